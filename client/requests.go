package client

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/bongobongo2020/craft/graph"
)

/*
Backend routes consumed by this client:

	POST /upload/image
	POST /prompt
	GET  /history/{prompt_id}
	GET  /view?filename=&subfolder=&type=
*/

// OutputDescriptor identifies a generated artifact inside a history
// response.
type OutputDescriptor struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

func (c *Client) httpURL(path string) string {
	c.mu.Lock()
	base := strings.TrimRight(c.settings.HTTPEndpoint, "/")
	c.mu.Unlock()
	return base + path
}

// UploadImage sends a reference image as multipart form data with
// overwrite semantics and returns the server-assigned stored name. The
// name may differ from the one supplied; the server's choice is
// authoritative and is what the job graph must reference. Failures are
// classified, emitted as an error status, and returned to the caller.
func (c *Client) UploadImage(r io.Reader, filename string) (string, error) {
	c.emitStatus(Status{Kind: StatusUploading, Message: "uploading " + filename})

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	formFile, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(formFile, r); err != nil {
		return "", err
	}
	_ = writer.WriteField("type", "input")
	_ = writer.WriteField("overwrite", "true")
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, c.httpURL("/upload/image"), &requestBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cerr := classifyTransportError("upload", err)
		c.emitError(cerr)
		return "", cerr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		cerr := classifyHTTPStatus("upload", resp.StatusCode)
		c.emitError(cerr)
		return "", cerr
	}

	var data struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data.Name == "" {
		cerr := &Error{Class: ErrorProtocol, Message: "upload response missing stored name", Err: err}
		c.emitError(cerr)
		return "", cerr
	}
	return data.Name, nil
}

type promptRequest struct {
	Prompt   graph.Graph `json:"prompt"`
	ClientID string      `json:"client_id"`
}

// GenerateImage builds the job graph for the prompt and submits it. With
// a non-empty imageName the graph includes the image branch referencing
// the uploaded file; with an empty one it degenerates to text-only
// generation. The returned prompt id becomes the tracked job. Backend
// validation errors are flattened into a single readable message and
// emitted as a validation error status.
func (c *Client) GenerateImage(prompt, imageName string) (string, error) {
	c.emitStatus(Status{Kind: StatusGenerating, Message: "generating: preparing job"})

	c.mu.Lock()
	opts := c.genopts
	c.mu.Unlock()
	g := graph.Build(prompt, imageName, opts)

	data, err := json.Marshal(promptRequest{Prompt: g, ClientID: c.clientID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.httpURL("/prompt"), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	c.applyJSONHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cerr := classifyTransportError("submit", err)
		c.emitError(cerr)
		return "", cerr
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		if verr := decodeValidationError(body); verr != nil {
			c.emitError(verr)
			return "", verr
		}
		cerr := classifyHTTPStatus("submit", resp.StatusCode)
		c.emitError(cerr)
		return "", cerr
	}

	var pr struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.Unmarshal(body, &pr); err != nil || pr.PromptID == "" {
		cerr := &Error{Class: ErrorProtocol, Message: "submit response missing prompt id", Err: err}
		c.emitError(cerr)
		return "", cerr
	}

	// Submitting replaces the tracked job. Late events for the previous
	// job fail the id match in handleMessage and are dropped.
	c.mu.Lock()
	c.promptID = pr.PromptID
	c.mu.Unlock()

	slog.Info("job submitted", "prompt_id", pr.PromptID, "client_id", c.clientID)
	return pr.PromptID, nil
}

type historyOutputs struct {
	Images []OutputDescriptor `json:"images"`
}

type historyEntry struct {
	Outputs map[string]historyOutputs `json:"outputs"`
}

// resolveOutput fetches the history entry for a finished job and turns
// the first descriptor under the save node into a viewable URL. It runs
// on the websocket side, so every failure is reported through the status
// callback only.
func (c *Client) resolveOutput(promptID string) {
	req, err := http.NewRequest(http.MethodGet, c.httpURL("/history/"+promptID), nil)
	if err != nil {
		c.emitError(&Error{Class: ErrorConnection, Message: "history fetch failed", Err: err})
		return
	}
	c.applyJSONHeaders(req)

	resp, err := c.historyClient.Do(req)
	if err != nil {
		c.emitError(classifyTransportError("history fetch", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.emitError(classifyHTTPStatus("history fetch", resp.StatusCode))
		return
	}

	var history map[string]historyEntry
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		c.emitError(&Error{Class: ErrorProtocol, Message: "malformed history response", Err: err})
		return
	}

	entry, ok := history[promptID]
	if !ok {
		c.emitError(&Error{Class: ErrorProtocol, Message: "output not found: no history entry for job"})
		return
	}
	outputs, ok := entry.Outputs[graph.SaveImageNodeID]
	if !ok || len(outputs.Images) == 0 {
		c.emitError(&Error{Class: ErrorProtocol, Message: "output not found: save node produced no images"})
		return
	}

	d := outputs.Images[0]
	params := url.Values{}
	params.Set("filename", d.Filename)
	params.Set("subfolder", d.Subfolder)
	params.Set("type", d.Type)
	viewURL := c.httpURL("/view?" + params.Encode())

	c.emitStatus(Status{Kind: StatusCompleted, Message: "generation completed"})

	c.mu.Lock()
	cb := c.callbacks
	c.mu.Unlock()
	if cb != nil && cb.OnImageGenerated != nil {
		cb.OnImageGenerated(viewURL)
	}
}

// FetchImage downloads the finished image from a URL produced by output
// resolution.
func (c *Client) FetchImage(viewURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, viewURL, nil)
	if err != nil {
		return nil, err
	}
	c.applyAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("image fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus("image fetch", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
