// Command vaultwire is the interactive client for the file-exchange server.
//
// Uploads read plaintext from the local storage directory and downloads write
// decrypted files back into it; only ciphertext crosses the wire.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vaultwire"
	"github.com/opd-ai/vaultwire/session"
	"github.com/opd-ai/vaultwire/storage"
)

type config struct {
	Addr       string `toml:"addr"`
	CAFile     string `toml:"ca_file"`
	StorageDir string `toml:"storage_dir"`
	Insecure   bool   `toml:"insecure"`
	LogLevel   string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		Addr:       "localhost:8444",
		StorageDir: "client_storage",
		LogLevel:   "warning",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		fmt.Fprintln(os.Stderr, "could not create storage directory:", err)
		os.Exit(1)
	}

	var client *session.Client
	if cfg.Insecure {
		client, err = vaultwire.DialInsecure(cfg.Addr)
	} else {
		client, err = vaultwire.Dial(cfg.Addr, cfg.CAFile)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not connect:", err)
		os.Exit(1)
	}
	defer client.Close()
	fmt.Println("Connected to server")

	stdin := bufio.NewScanner(os.Stdin)

	fmt.Print("Username: ")
	username := readLine(stdin)
	fmt.Print("Password: ")
	password := readLine(stdin)

	if err := client.Authenticate(username, password); err != nil {
		fmt.Fprintln(os.Stderr, "authentication failed:", err)
		os.Exit(1)
	}
	fmt.Println("Authenticated as", client.User())

	commandLoop(client, stdin, cfg.StorageDir)
}

func readLine(scanner *bufio.Scanner) string {
	if !scanner.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(scanner.Text())
}

func commandLoop(client *session.Client, stdin *bufio.Scanner, storageDir string) {
	for {
		fmt.Println("\nAvailable commands:")
		fmt.Println("  UPLOAD <filename>   - upload a file to the server")
		fmt.Println("  DOWNLOAD <filename> - download a file from the server")
		fmt.Println("  LIST                - list files on the server")
		fmt.Println("  EXIT                - close the connection")
		fmt.Print("\nEnter command: ")

		input := readLine(stdin)
		verb, arg, _ := strings.Cut(input, " ")

		switch strings.ToUpper(verb) {
		case session.CmdUpload:
			runUpload(client, storageDir, arg)
		case session.CmdDownload:
			runDownload(client, storageDir, arg)
		case session.CmdList:
			runList(client)
		case session.CmdExit:
			client.Exit()
			fmt.Println("Goodbye!")
			return
		case "":
			// Blank input; just reprint the menu.
		default:
			fmt.Println("Unknown command. Please try again.")
		}
	}
}

func runUpload(client *session.Client, storageDir, name string) {
	if name == "" {
		fmt.Println("Usage: UPLOAD <filename>")
		return
	}
	if err := storage.ValidateName(name); err != nil {
		fmt.Println("Invalid filename:", name)
		return
	}

	data, err := os.ReadFile(filepath.Join(storageDir, name))
	if err != nil {
		fmt.Println("Could not read file:", err)
		return
	}

	if err := client.Upload(name, data); err != nil {
		fmt.Println("Upload failed:", err)
		return
	}
	fmt.Println("File uploaded successfully:", name)
}

func runDownload(client *session.Client, storageDir, name string) {
	if name == "" {
		fmt.Println("Usage: DOWNLOAD <filename>")
		return
	}
	if err := storage.ValidateName(name); err != nil {
		fmt.Println("Invalid filename:", name)
		return
	}

	data, err := client.Download(name)
	if err != nil {
		fmt.Println("Download failed:", err)
		return
	}

	if err := os.WriteFile(filepath.Join(storageDir, name), data, 0o600); err != nil {
		fmt.Println("Could not save file:", err)
		return
	}
	fmt.Println("File downloaded successfully:", name)
}

func runList(client *session.Client) {
	names, err := client.List()
	if err != nil {
		fmt.Println("List failed:", err)
		return
	}
	if len(names) == 0 {
		fmt.Println("No files found")
		return
	}
	fmt.Println("Files available on server:")
	for _, name := range names {
		fmt.Println("-", name)
	}
}
