// Build-time tool that downloads the sentence-embedding model used by
// the inference facade. Point INFERENCE_EMBED_MODEL_PATH at the
// printed directory.
//
// Usage: go run ./tools/download-model [dest]
package main

import (
	"fmt"
	"os"

	"github.com/knights-analytics/hugot"
)

const embedModel = "BAAI/bge-base-en-v1.5"

func main() {
	dest := "models"
	if len(os.Args) > 1 {
		dest = os.Args[1]
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Downloading %s to %s...\n", embedModel, dest)

	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = "onnx/model.onnx"
	modelPath, err := hugot.DownloadModel(embedModel, dest, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "download model: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Model downloaded to %s\n", modelPath)
}
