// Package offerletter recovers the offer document from a candidate's message
// thread. The upstream API has no dedicated endpoint for the signed letter,
// so the thread is scanned newest first for the most recent document the
// recruiter sent.
package offerletter

import (
	"context"

	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/docparse"
	"github.com/tranvh/hiregate/internal/htmltext"
)

// Letter is a recovered offer document.
type Letter struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type messageLister interface {
	ListMessages(token, candidateID string) ([]*basehiring.Message, error)
}

type fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Finder scans candidate message threads for offer documents.
type Finder struct {
	api        messageLister
	token      string
	downloader fetcher
	extractor  docparse.Extractor
	logger     *zap.Logger
}

func NewFinder(api messageLister, token string, downloader fetcher, extractor docparse.Extractor, logger *zap.Logger) *Finder {
	return &Finder{
		api:        api,
		token:      token,
		downloader: downloader,
		extractor:  extractor,
		logger:     logger,
	}
}

type found struct {
	url  string
	name string
}

// Find returns the newest extractable document in the candidate's thread,
// or nil when no message carries one. Failures of individual downloads or
// extractions skip the file; only the message listing itself can fail the
// call.
func (f *Finder) Find(ctx context.Context, candidateID string) (*Letter, error) {
	messages, err := f.api.ListMessages(f.token, candidateID)
	if err != nil {
		return nil, err
	}

	for _, msg := range messages {
		for _, file := range candidateFiles(msg) {
			letter := f.tryExtract(ctx, file)
			if letter != nil {
				return letter, nil
			}
		}
	}

	return nil, nil
}

// candidateFiles lists the documents referenced by one message. Proper
// attachments win; links buried in the message HTML are only considered when
// the message has no usable attachment.
func candidateFiles(msg *basehiring.Message) []found {
	var files []found
	if msg.HasAttachment > 0 {
		for _, att := range msg.Attachments {
			url := att.FileURL()
			if url != "" && docparse.IsTarget(url, att.Name) {
				files = append(files, found{url: url, name: att.Name})
			}
		}
	}
	if len(files) > 0 {
		return files
	}

	for _, link := range htmltext.Links(msg.Content) {
		if docparse.IsTarget(link.URL, link.Name) {
			files = append(files, found{url: link.URL, name: link.Name})
		}
	}
	return files
}

func (f *Finder) tryExtract(ctx context.Context, file found) *Letter {
	data, err := f.downloader.Fetch(ctx, file.url)
	if err != nil {
		f.logger.Debug("offer letter download failed",
			zap.String("url", file.url), zap.Error(err))
		return nil
	}

	text, err := f.extractor.Extract(data, docparse.DetectKind(file.url, file.name))
	if err != nil || text == "" {
		if err != nil {
			f.logger.Debug("offer letter extraction failed",
				zap.String("name", file.name), zap.Error(err))
		}
		return nil
	}

	return &Letter{URL: file.url, Name: file.name, Text: text}
}
