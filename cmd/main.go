package main

import (
	"github.com/corray333/backend-labs/checkout/internal/app"
	"github.com/corray333/backend-labs/checkout/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
