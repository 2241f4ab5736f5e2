package main

import (
	"log"

	"regimealloc/cmd"
)

func main() {
	apiHandler, err := cmd.InitializeDependencies("")
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(3009)
	if err != nil {
		log.Fatal(err)
	}
}
