// Command certgen writes a development CA and a server certificate signed
// by it. Run the backend with --tls_cert/--tls_key pointing at the server
// pair and the client with --ca_file pointing at the CA certificate.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atinyakov/creatorhub/internal/certgen"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("certgen", pflag.ContinueOnError)
	dir := fs.String("out", "certs", "directory to write certificates into")
	hosts := fs.StringSlice("host", []string{"localhost", "127.0.0.1"}, "DNS names or IPs the server certificate covers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := certgen.WriteDevBundle(*dir, *hosts); err != nil {
		return err
	}
	for _, name := range []string{certgen.CACertFile, certgen.ServerCertFile, certgen.ServerKeyFile} {
		fmt.Fprintln(out, filepath.Join(*dir, name))
	}
	return nil
}
