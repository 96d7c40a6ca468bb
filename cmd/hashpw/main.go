// Command hashpw generates the argon2id hash for ADMIN_PASSWORD_HASH.
// The password is read from stdin so it never lands in shell history.
//
// Usage: echo -n 'password' | hashpw
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sigstudio/sigsite/internal/plugins/auth"
)

func main() {
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading password: %v\n", err)
		os.Exit(1)
	}

	password := strings.TrimRight(string(data), "\r\n")
	if password == "" {
		fmt.Fprintln(os.Stderr, "empty password")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashing: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
