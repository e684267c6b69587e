// Package vaultwire implements an authenticated file-exchange service.
//
// A client and server exchange line-oriented control commands and binary
// ciphertext payloads over one persistent, TLS-secured connection. Payloads
// are sealed with a symmetric key derived from the user's password; the key
// never crosses the wire, and the server stores only ciphertext.
//
// Example server:
//
//	store := auth.NewStore()
//	auth.SeedDefaults(store)
//
//	srv, err := vaultwire.NewServer(vaultwire.Options{
//	    Addr:       ":8444",
//	    CertFile:   "server.crt",
//	    KeyFile:    "server.key",
//	    StorageDir: "server_storage",
//	}, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv.Serve()
//
// Example client:
//
//	client, err := vaultwire.Dial("localhost:8444", "ca.pem")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Authenticate("Wild", "password123"); err != nil {
//	    log.Fatal(err)
//	}
//	client.Upload("notes.txt", contents)
package vaultwire
