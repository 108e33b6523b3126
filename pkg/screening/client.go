/**
 * @description
 * This package provides a client for the third-party risk screening API.
 * The provider checks a prospective beneficiary for account validity,
 * fraud risk and sanctions-list hits, and returns a verdict the validation
 * pipeline applies policy to.
 *
 * Key features:
 * - Manages the API base URL and secret key.
 * - A transport or non-2xx failure is an infrastructure error, never a
 *   screening verdict; the caller decides how to treat it.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - internal/domain: For the ScreeningResult model.
 */

package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

// Client is a client for the risk screening API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new screening API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type screeningRequest struct {
	AccountNumber   string `json:"account_number"`
	BankCode        string `json:"bank_code"`
	BeneficiaryName string `json:"beneficiary_name"`
	BeneficiaryType string `json:"beneficiary_type"`
}

// Screen submits the beneficiary details to the provider and returns its
// verdict.
func (c *Client) Screen(ctx context.Context, accountNumber, bankCode, name, beneficiaryType string) (*domain.ScreeningResult, error) {
	url := fmt.Sprintf("%s/api/v1/screenings", c.baseURL)

	payload, err := json.Marshal(screeningRequest{
		AccountNumber:   accountNumber,
		BankCode:        bankCode,
		BeneficiaryName: name,
		BeneficiaryType: beneficiaryType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal screening request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create screening request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("screening request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read screening response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("screening service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result domain.ScreeningResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode screening response: %w", err)
	}
	return &result, nil
}
