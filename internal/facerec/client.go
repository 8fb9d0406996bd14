package facerec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client encapsula chamadas ao serviço externo de reconhecimento facial
// (API compatível com Azure Face).
type Client struct {
	httpClient    *http.Client
	endpoint      string
	key           string
	personGroupID string
}

// Config descreve credenciais essenciais para o cliente.
type Config struct {
	Endpoint      string
	Key           string
	PersonGroupID string
}

// Candidate é um possível dono de uma face detectada.
type Candidate struct {
	PersonID   string  `json:"personId"`
	Confidence float64 `json:"confidence"`
}

// Identification agrupa os candidatos de uma face.
type Identification struct {
	FaceID     string      `json:"faceId"`
	Candidates []Candidate `json:"candidates"`
}

// New cria um novo cliente.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("facerec: endpoint obrigatório")
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, errors.New("facerec: chave obrigatória")
	}
	if strings.TrimSpace(cfg.PersonGroupID) == "" {
		return nil, errors.New("facerec: person group obrigatório")
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		endpoint:      strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		key:           cfg.Key,
		personGroupID: cfg.PersonGroupID,
	}, nil
}

// DetectFromURL detecta faces em uma imagem acessível por URL e devolve
// os ids temporários de cada face.
func (c *Client) DetectFromURL(ctx context.Context, imageURL string) ([]string, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, errors.New("facerec: url da imagem vazia")
	}
	body, err := json.Marshal(map[string]string{"url": imageURL})
	if err != nil {
		return nil, err
	}
	return c.detect(ctx, bytes.NewReader(body), "application/json")
}

// Detect detecta faces nos bytes crus da imagem.
func (c *Client) Detect(ctx context.Context, image []byte) ([]string, error) {
	if len(image) == 0 {
		return nil, errors.New("facerec: imagem vazia")
	}
	return c.detect(ctx, bytes.NewReader(image), "application/octet-stream")
}

func (c *Client) detect(ctx context.Context, body io.Reader, contentType string) ([]string, error) {
	url := c.endpoint + "/face/v1.0/detect?returnFaceId=true&recognitionModel=recognition_04&detectionModel=detection_03"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("detect", resp)
	}

	var faces []struct {
		FaceID string `json:"faceId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&faces); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(faces))
	for _, f := range faces {
		if f.FaceID != "" {
			ids = append(ids, f.FaceID)
		}
	}
	return ids, nil
}

// Identify compara as faces detectadas contra o grupo de pessoas
// cadastrado. O serviço aceita no máximo dez faces por chamada, então o
// lote é particionado.
func (c *Client) Identify(ctx context.Context, faceIDs []string, threshold float64) ([]Identification, error) {
	if len(faceIDs) == 0 {
		return nil, nil
	}

	var all []Identification
	for start := 0; start < len(faceIDs); start += 10 {
		end := start + 10
		if end > len(faceIDs) {
			end = len(faceIDs)
		}
		batch, err := c.identifyBatch(ctx, faceIDs[start:end], threshold)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (c *Client) identifyBatch(ctx context.Context, faceIDs []string, threshold float64) ([]Identification, error) {
	payload := map[string]any{
		"faceIds":                    faceIDs,
		"largePersonGroupId":         c.personGroupID,
		"maxNumOfCandidatesReturned": 5,
	}
	if threshold > 0 && threshold <= 1 {
		payload["confidenceThreshold"] = threshold
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/face/v1.0/identify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("identify", resp)
	}

	var results []Identification
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}

func apiError(op string, resp *http.Response) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("facerec %s: status %d: %s", op, resp.StatusCode, payload.Error.Message)
	}
	return fmt.Errorf("facerec %s: status %d", op, resp.StatusCode)
}
