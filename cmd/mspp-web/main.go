// mspp-web serves the HEY QC pipeline over HTTP: report tables are
// uploaded, then chart and export endpoints run the full
// load-classify-pair-compute-render pipeline synchronously per request.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

var global *Global

func main() {
	errs := make(chan error, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	port := flag.Int("port", 8050, "Port for HTTP server")
	uploadDir := flag.String("upload-dir", "", "Directory for uploaded report tables. A temp dir is created when empty; files live only as long as the process.")
	flag.Parse()

	if *uploadDir == "" {
		dir, err := os.MkdirTemp("", "mspp-uploads-")
		if err != nil {
			log.Fatalln(err)
		}
		defer os.RemoveAll(dir)
		*uploadDir = dir
	}

	global = NewGlobal(
		log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime),
		"MSPP",
		*uploadDir,
	)

	global.log.Println("Launching", global.Site)
	global.log.Println("Uploads under", global.UploadDir)

	go func() {
		global.log.Println("Starting HTTP server on port", *port)
		if err := http.ListenAndServe(fmt.Sprintf(`:%d`, *port), router(global)); err != nil {
			errs <- err
		}
	}()

	select {
	case sigl := <-sig:
		global.log.Printf("\nExit: %s\n", sigl.String())
		global.ClearUploads()

	case err := <-errs:
		global.log.Println("Exiting due to error", err)
		os.Exit(1)
	}
}
