package main

import (
	"log"

	_ "report-router/docs"
	"report-router/internal/app"
)

// @title Report Router API
// @version 1.0
// @description Routes report files from an incoming drop folder into destination folders by filename prefix.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT token.
func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
