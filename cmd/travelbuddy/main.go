package main

import "github.com/joho/godotenv"

func main() {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	Execute()
}
