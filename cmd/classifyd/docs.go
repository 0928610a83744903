package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           classifyd API
// @version         1.0
// @description     HTTP API for single-image game screenshot classification.
//
// @contact.name   classifyd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
