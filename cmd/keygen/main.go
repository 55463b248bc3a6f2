// keygen prints fresh key material for the auth service as env lines:
// an RSA signing pair and an age X25519 encryption pair, each base64
// encoded the way the service reads them.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/spec-kit/campus-auth/internal/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var bits int
	var verifyOnly bool

	flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	flagSet.IntVar(&bits, "bits", auth.SigningKeyBits, "RSA modulus size for the signing key")
	flagSet.BoolVar(&verifyOnly, "verify-only", false, "omit private keys from the output (prints public halves only)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if bits < 2048 {
		return fmt.Errorf("--bits must be at least 2048, got %d", bits)
	}

	signPub, signPriv, err := auth.GenerateSigningKeyPair(bits)
	if err != nil {
		return err
	}
	encPub, encPriv, err := auth.GenerateEncryptionKeyPair()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "AUTH_SIGNING_PUBLIC_KEY=%s\n", signPub)
	if !verifyOnly {
		fmt.Fprintf(out, "AUTH_SIGNING_PRIVATE_KEY=%s\n", signPriv)
	}
	fmt.Fprintf(out, "AUTH_ENCRYPTION_PUBLIC_KEY=%s\n", encPub)
	if !verifyOnly {
		fmt.Fprintf(out, "AUTH_ENCRYPTION_PRIVATE_KEY=%s\n", encPriv)
	}
	return nil
}
