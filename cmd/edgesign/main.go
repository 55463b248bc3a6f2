// edgesign is the trusted edge side of the bootstrap flow. It reads a
// JSON request body on stdin and prints the headers to send with that
// same body: the signed payload envelope and, with --identity, a
// short-lived transport token.
//
// Key material and token settings default to the service's AUTH_*
// environment variables (a .env file is honored).
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/edge"
)

const (
	headerPayloadSignature = "X-Payload-Signature"
	headerTransportToken   = "X-Transport-Token"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	var (
		publicKey  string
		privateKey string
		identity   string
		issuer     string
		audience   string
		ttl        time.Duration
	)

	flagSet := pflag.NewFlagSet("edgesign", pflag.ContinueOnError)
	flagSet.StringVar(&publicKey, "public-key", os.Getenv("AUTH_SIGNING_PUBLIC_KEY"), "base64 PEM signing public key")
	flagSet.StringVar(&privateKey, "private-key", os.Getenv("AUTH_SIGNING_PRIVATE_KEY"), "base64 PEM signing private key")
	flagSet.StringVar(&identity, "identity", "", "also mint a transport token asserting this identity")
	flagSet.StringVar(&issuer, "issuer", envOr("AUTH_TOKEN_ISSUER", "campus-auth"), "token issuer")
	flagSet.StringVar(&audience, "audience", envOr("AUTH_TRANSPORT_AUDIENCE", "campus-edge"), "transport token audience")
	flagSet.DurationVar(&ttl, "ttl", 10*time.Second, "transport token lifetime")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if privateKey == "" {
		return errors.New("a private signing key is required (--private-key or AUTH_SIGNING_PRIVATE_KEY)")
	}

	sig, err := auth.LoadSignatureService(publicKey, privateKey)
	if err != nil {
		return err
	}
	signer, err := edge.NewSigner(sig)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(body) {
		return errors.New("stdin is not a JSON document")
	}
	envelope, err := signer.Seal(json.RawMessage(body))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", headerPayloadSignature, envelope)

	if identity == "" {
		return nil
	}
	tokens, err := auth.NewTokenService(sig, auth.TokenConfig{Issuer: issuer, Audience: audience, TTL: ttl}, nil, nil)
	if err != nil {
		return err
	}
	issuerSvc, err := edge.NewTransportIssuer(sig, tokens)
	if err != nil {
		return err
	}
	token, _, err := issuerSvc.Mint(identity)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", headerTransportToken, token)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
