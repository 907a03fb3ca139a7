// Package main writes the development PKI (a local CA and a server
// certificate) used by the dev backend's -tls mode.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/atinyakov/DigitalHouse/internal/certgen"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated server names")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	if err := certgen.WriteDevPKI(*dir, names...); err != nil {
		return err
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
	return nil
}
