// Package cmd contains the wallet commands.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var url string

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the ledger service.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple MiniCoin wallet",
}

// Execute runs the command named on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// =============================================================================

var client = http.Client{Timeout: 10 * time.Second}

// post sends the request document to the path and decodes the response.
func post(path string, req any, resp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	r, err := client.Post(url+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return decode(r, resp)
}

// get calls the path and decodes the response.
func get(path string, resp any) error {
	r, err := client.Get(url + path)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return decode(r, resp)
}

func decode(r *http.Response, resp any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	if r.StatusCode >= http.StatusBadRequest {
		var er struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
			return fmt.Errorf("status %d: %s", r.StatusCode, body)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("status %d: %s: %v", r.StatusCode, er.Error, er.Fields)
		}
		return fmt.Errorf("status %d: %s", r.StatusCode, er.Error)
	}

	return json.Unmarshal(body, resp)
}
