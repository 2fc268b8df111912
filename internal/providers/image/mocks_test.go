package image

import (
	"context"

	"google.golang.org/genai"
)

// --- Mocks ---

type mockImageModels struct {
	lastModel  string
	lastPrompt string
	lastConfig *genai.GenerateImagesConfig
	resp       *genai.GenerateImagesResponse
	err        error
}

func (m *mockImageModels) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.lastModel = model
	m.lastPrompt = prompt
	m.lastConfig = config
	return m.resp, m.err
}

type mockContentModels struct {
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
	resp         *genai.GenerateContentResponse
	err          error
}

func (m *mockContentModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	return m.resp, m.err
}

type stubGenerator struct {
	asset   *Asset
	err     error
	lastReq GenerateRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	s.lastReq = req
	return s.asset, s.err
}

func (s *stubGenerator) Name() string { return "stub" }
