package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mi-ops/ansible-ovirt-inventory/internal/build"
	"github.com/mi-ops/ansible-ovirt-inventory/internal/config"
	"github.com/mi-ops/ansible-ovirt-inventory/pkg/inventory"
	"github.com/mi-ops/ansible-ovirt-inventory/pkg/util"
)

func main() {
	// Setup logging.
	log.SetOutput(os.Stderr)

	// Parse flags.
	listFlag := flag.Bool("list", false, "produce a JSON inventory for Ansible")
	hostFlag := flag.String("host", "", "produce variables for a single host")
	prettyFlag := flag.Bool("pretty", false, "pretty-print JSON output")
	configFlag := flag.String("config", "", "path to the datacenter configuration file")
	sectionsFlag := flag.Bool("sections", false, "export resolved datacenter sections")
	formatFlag := flag.String("format", "yaml", "select export format, if available")
	versionFlag := flag.Bool("version", false, "display ovirt-inventory version and build info")
	flag.Parse()

	if *versionFlag {
		fmt.Println("version:", build.Version)
		fmt.Println("build time:", build.Time)
		return
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if len(*configFlag) > 0 {
		cfg.Inventory.Path = *configFlag
	}

	// Initialize a new inventory.
	ovirtInventory, err := inventory.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer ovirtInventory.Close()

	format := "json"
	if *prettyFlag {
		format = "json-pretty"
	}

	var bytes []byte

	switch {
	case *sectionsFlag:
		// Export the resolved datacenter sections for debugging. Passwords are redacted.
		bytes, err = util.Marshal(ovirtInventory.Sections, *formatFlag)
	case len(*hostFlag) > 0 && !*listFlag:
		// Per-host variables are embedded in _meta, so this answers from the assembled document.
		vars, varsErr := ovirtInventory.GetHostVariables(*hostFlag)
		if varsErr != nil {
			log.Fatal(varsErr)
		}

		bytes, err = util.Marshal(vars, format)
	default:
		export := make(map[string]interface{})

		// Assemble the inventory document.
		if exportErr := ovirtInventory.ExportInventory(export); exportErr != nil {
			log.Fatal(exportErr)
		}

		bytes, err = util.Marshal(export, format)
	}

	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(bytes))
}
