// cmd/server/main.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"attendance_backend/internal/routes"
	"attendance_backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	db := storage.OpenDB()
	r := routes.NewRouter(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := ":" + port
	log.Printf("Server running on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
