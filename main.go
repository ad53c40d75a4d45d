package main

import (
	"log"

	"github.com/EnmanuelReynoso23/el-pensum/app"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
