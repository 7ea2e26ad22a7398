// Command admintool mints the out-of-band credentials the server
// validates: bcrypt hashes for ACCESS_KEY_HASH and JWT bearer tokens
// for the admin API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"badgereader/internal/auth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "hash-key":
		hashKey(os.Args[2:])
	case "token":
		token(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  admintool hash-key -key <access key>
  admintool token -secret <jwt secret> [-subject admin] [-ttl 24h]`)
	os.Exit(2)
}

func hashKey(args []string) {
	fs := flag.NewFlagSet("hash-key", flag.ExitOnError)
	key := fs.String("key", "", "reader access key to hash")
	_ = fs.Parse(args)

	if *key == "" {
		log.Fatal("hash-key: -key is required")
	}
	hash, err := auth.HashAccessKey(*key)
	if err != nil {
		log.Fatalf("hash-key: %v", err)
	}
	fmt.Println(hash)
}

func token(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	secret := fs.String("secret", "", "JWT secret the server is configured with")
	subject := fs.String("subject", "admin", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	_ = fs.Parse(args)

	if *secret == "" {
		log.Fatal("token: -secret is required")
	}
	signed, err := auth.GenerateToken(*secret, *subject, *ttl)
	if err != nil {
		log.Fatalf("token: %v", err)
	}
	fmt.Println(signed)
}
