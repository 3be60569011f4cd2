package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"escrituras/internal/common"
	"escrituras/internal/entity"
	"escrituras/internal/llm"
)

// ExtractDeed implements llm.DeedExtractor over text-only chat/completions.
// The response is validated strictly against the deed schema first; if that
// fails we sanitize (empty-field policy, unknown keys, numeric coercions) and
// re-validate once. Anything still non-conforming is malformed model output.
func (c *Client) ExtractDeed(ctx context.Context, req llm.ExtractRequest) (entity.Escritura, []byte, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		c.log.Error("llm.extract.no_credential")
		return entity.Escritura{}, nil, common.ErrExtractionUnavailable
	}

	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"filename_hint", req.FilenameHint,
	)

	schema := llm.BuildEscrituraJSONSchema()
	sys := llm.BuildSystemPrompt()
	user := llm.BuildUserPrompt(req)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "system", "content": "Esquema JSON:\n" + mustJSON(schema)},
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.Escritura{}, nil, common.WrapError(common.ErrExtractionUnavailable, httpErr.Error())
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.Escritura{}, raw, common.WrapError(common.ErrMalformedModelOutput, "decode response")
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.Escritura{}, raw, common.WrapError(common.ErrMalformedModelOutput, "no choices in response")
	}
	rawContent := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := llm.ValidateEscrituraJSON(rawContent); err != nil {
		cleaned, repairs, sErr := llm.NormalizeEscrituraJSON(rawContent)
		if sErr != nil {
			c.log.Error("llm.extract.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return entity.Escritura{}, rawContent, common.WrapError(common.ErrMalformedModelOutput, sErr.Error())
		}
		if vErr := llm.ValidateEscrituraJSON(cleaned); vErr != nil {
			c.log.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", string(rawContent),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return entity.Escritura{}, rawContent, common.WrapError(common.ErrMalformedModelOutput, vErr.Error())
		}
		c.log.Warn("llm.extract.sanitize_applied",
			"req_id", rid, "repairs", repairs,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		rawContent = cleaned
	}

	var out entity.Escritura
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.Escritura{}, rawContent, common.WrapError(common.ErrMalformedModelOutput, "unmarshal fields")
	}
	out.Normalize()

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"numero_escritura", out.NumeroEscritura,
		"escribano", out.Escribano,
		"partes", len(out.PartesIntervinientes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
