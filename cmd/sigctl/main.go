package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"sigcheck/internal/engine/signature"
	"sigcheck/internal/engine/webhooks"
	"sigcheck/internal/platform/auth"
	"sigcheck/internal/platform/config"
)

const usage = `usage: sigctl <command> [flags]

commands:
  sign    print the HMAC-SHA256 signature of a payload
  verify  check a signature against a payload
  send    sign a payload and POST it to a webhook endpoint
  token   issue a bearer token for the signing endpoint
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	code := 0
	switch args[0] {
	case "sign":
		err = runSign(args[1:], stdin, stdout)
	case "verify":
		code, err = runVerify(args[1:], stdin, stdout)
	case "send":
		code, err = runSend(args[1:], stdin, stdout)
	case "token":
		err = runToken(args[1:], stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "sigctl %s: %v\n", args[0], err)
		return 1
	}
	return code
}

type payloadFlags struct {
	secret  *string
	payload *string
	file    *string
}

func addPayloadFlags(fs *flag.FlagSet) payloadFlags {
	return payloadFlags{
		secret:  fs.String("secret", os.Getenv("WEBHOOKS_SECRET"), "shared secret (default $WEBHOOKS_SECRET)"),
		payload: fs.String("payload", "", "payload text"),
		file:    fs.String("file", "", "read payload from file, - for stdin"),
	}
}

// read returns the exact payload bytes, preferring -payload over -file.
func (p payloadFlags) read(stdin io.Reader) ([]byte, error) {
	switch {
	case *p.payload != "":
		return []byte(*p.payload), nil
	case *p.file == "-":
		return io.ReadAll(stdin)
	case *p.file != "":
		return os.ReadFile(*p.file)
	default:
		return nil, signature.ErrMissingInput
	}
}

func runSign(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	pf := addPayloadFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload, err := pf.read(stdin)
	if err != nil {
		return err
	}
	sig, err := signature.GenerateSignature([]byte(*pf.secret), payload)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, sig)
	return nil
}

func runVerify(args []string, stdin io.Reader, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	pf := addPayloadFlags(fs)
	provided := fs.String("signature", "", "hex signature to check")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}

	payload, err := pf.read(stdin)
	if err != nil {
		return 0, err
	}
	if signature.VerifySignature([]byte(*pf.secret), payload, *provided) {
		fmt.Fprintln(stdout, "valid")
		return 0, nil
	}
	fmt.Fprintln(stdout, "invalid")
	return 1, nil
}

func runSend(args []string, stdin io.Reader, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	pf := addPayloadFlags(fs)
	url := fs.String("url", "http://localhost:8080/api/webhook-validator", "webhook endpoint")
	header := fs.String("header", webhooks.DefaultHeader, "signature header name")
	timeout := fs.Duration("timeout", webhooks.DefaultTimeout, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}

	payload, err := pf.read(stdin)
	if err != nil {
		return 0, err
	}

	sender := webhooks.NewSender(*pf.secret, webhooks.WithHeader(*header), webhooks.WithTimeout(*timeout))
	d, err := sender.Send(context.Background(), *url, payload)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(stdout, "status: %d\nsignature: %s\n", d.StatusCode, d.Signature)
	switch {
	case d.Body["message"] != nil:
		fmt.Fprintf(stdout, "message: %v\n", d.Body["message"])
	case d.Body["error"] != nil:
		fmt.Fprintf(stdout, "error: %v\n", d.Body["error"])
	default:
		fmt.Fprintf(stdout, "body: %s\n", d.RawBody)
	}

	if d.StatusCode >= 400 {
		return 1, nil
	}
	return 0, nil
}

func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	secret := fs.String("secret", os.Getenv("AUTH_JWT_SECRET"), "JWT signing secret (default $AUTH_JWT_SECRET)")
	issuer := fs.String("issuer", "sigcheck", "token issuer")
	subject := fs.String("subject", "sigctl", "token subject")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc := auth.NewTokenService(config.AuthConfig{JWTSecret: *secret, Issuer: *issuer, TokenTTL: *ttl})
	token, err := svc.GenerateToken(*subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}
