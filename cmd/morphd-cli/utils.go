package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const timeout = 10 * time.Second

func getJSON(url, apiKey string, result interface{}) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	return doRequest(req, apiKey, result)
}

func postJSON(url, apiKey string, body, result interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest("POST", url, &buf)
	if err != nil {
		return err
	}
	return doRequest(req, apiKey, result)
}

func doRequest(req *http.Request, apiKey string, result interface{}) error {
	req.Header.Add("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Add("X-API-Key", apiKey)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	// nolint
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s", buf)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(buf, result)
}

func download(url, apiKey string, w io.Writer) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Add("X-API-Key", apiKey)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	// nolint
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s", buf)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}
