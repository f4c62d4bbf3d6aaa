package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/smarttransit/bus-booking/internal/utils"
)

func main() {
	var password string
	flag.StringVar(&password, "password", "", "admin password to hash into ADMIN_PASSWORD_HASH (optional)")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Admin Secret Generator for Bus Booking")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateSecret(64)
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("ADMIN_JWT_SECRET=%s\n", secret)

	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
	} else {
		fmt.Println()
		fmt.Println("Run again with -password to generate ADMIN_PASSWORD_HASH.")
	}

	fmt.Println()
	fmt.Println("IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
