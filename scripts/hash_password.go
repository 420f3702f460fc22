package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Quick utility to generate a peppered bcrypt hash for seeding a registrar
// Usage: PASSWORD_PEPPER=... go run scripts/hash_password.go <userName> <password>
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/hash_password.go <userName> <password>")
		os.Exit(1)
	}

	userName, password := os.Args[1], os.Args[2]
	pepper := os.Getenv("PASSWORD_PEPPER")

	// Generate bcrypt hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password+pepper), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nTo seed the registrar in MongoDB, run:\n")
	fmt.Printf("db.users.insertOne({\n")
	fmt.Printf("  user: {userName: %q, role: \"REGISTRAR\", password: %q, salt: %q},\n", userName, string(hashedPassword), string(hashedPassword[7:29]))
	fmt.Printf("  __v: 0\n")
	fmt.Printf("})\n")
}
