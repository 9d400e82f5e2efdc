package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "init":
		if err := cmdInit(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	case "mnemonic":
		if err := cmdMnemonic(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	case "recover":
		if err := cmdRecover(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	case "export-qr":
		if err := cmdExportQR(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	case "import-qr":
		if err := cmdImportQR(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	case "backup":
		if err := cmdBackup(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	case "restore":
		if err := cmdRestore(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	case "status":
		if err := cmdStatus(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Println(`seedvault - move one cryptographic identity between devices

Usage:
  seedvault init                 generate a new identity seed
  seedvault mnemonic             display the 24-word recovery phrase
  seedvault recover              restore the seed from a typed-in phrase
  seedvault export-qr            print the animated QR transfer frames
  seedvault import-qr            read scanned frames from stdin
  seedvault backup               encrypt the seed and upload to the server
  seedvault restore              download and decrypt the server backup
  seedvault status               show identity and backup state`)
}
