package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Generates the bcrypt hash for INSTRUCTOR_PASSWORD_HASH. The plaintext is
// read from the terminal so it never lands in shell history.
func main() {
	cfg := config.Load()

	fmt.Print("Enter instructor password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password")
		os.Exit(1)
	}

	if len(bytePassword) < 8 {
		fmt.Fprintln(os.Stderr, "Error: password must be at least 8 characters")
		os.Exit(1)
	}

	fmt.Print("Confirm instructor password: ")
	byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password")
		os.Exit(1)
	}

	if string(bytePassword) != string(byteConfirm) {
		fmt.Fprintln(os.Stderr, "Error: passwords do not match")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword(bytePassword, cfg.BcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error hashing password:", err)
		os.Exit(1)
	}

	fmt.Println("Add this to your environment:")
	fmt.Printf("INSTRUCTOR_PASSWORD_HASH=%s\n", string(hash))
}
