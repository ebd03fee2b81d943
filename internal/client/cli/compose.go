package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/client/mutation"
)

// Post composes a new top-level post: multi-line content, optional
// attachments, then submit.
func (a *App) Post(ctx context.Context) error {
	a.orch.ComposePost()
	return a.compose(ctx, true)
}

// Comment composes a comment on the entity with the given id. The target must
// be present in the cached feed.
func (a *App) Comment(ctx context.Context, id string) error {
	target, ok := a.store.Get(id)
	if !ok {
		fmt.Println("Entity not found in the feed:", id)
		return nil
	}
	a.orch.ComposeComment(target)
	return a.compose(ctx, false)
}

// Remix composes a remix of the post with the given id.
func (a *App) Remix(ctx context.Context, id string) error {
	target, ok := a.store.Get(id)
	if !ok {
		fmt.Println("Entity not found in the feed:", id)
		return nil
	}
	if target.Kind != models.EntityKindPost {
		fmt.Println("Only posts can be remixed")
		return nil
	}
	a.orch.ComposeRemix(target)
	return a.compose(ctx, false)
}

// compose runs the shared interactive flow: read content, optionally collect
// attachments, wait for uploads to settle, then submit and report the outcome.
func (a *App) compose(ctx context.Context, withAttachments bool) error {
	content, err := GetMultiline(a.reader, "Enter text", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	a.orch.SetContent(content)

	if withAttachments {
		if err := a.collectAttachments(ctx); err != nil {
			return err
		}
	}

	ticket, err := a.orch.Submit(ctx)
	if err != nil {
		log.Printf("cannot submit: %v", err)
		return err
	}

	if err := ticket.Wait(ctx); err != nil {
		return err
	}
	if err := ticket.Err(); err != nil {
		log.Printf("submission failed: %v", err)
		fmt.Println("Your draft is preserved; fix and re-submit with 'post'")
		return err
	}

	fmt.Println("Published:", ticket.Result().ID)
	return nil
}

// collectAttachments prompts for file paths one by one, starts uploads as
// files are added, then waits for all of them to settle. Failed uploads are
// retried once; anything still failing is dropped with a notice so the
// submission can proceed.
func (a *App) collectAttachments(ctx context.Context) error {
	for a.set.Len() < models.MaxAttachments {
		path, err := GetSimpleText(a.reader, "Attachment file path (empty line to finish)", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		if path == "" {
			break
		}

		file, err := readPendingFile(path)
		if err != nil {
			log.Printf("cannot read %s: %v", path, err)
			continue
		}
		a.orch.Attach(ctx, []models.PendingFile{*file})
	}

	if err := a.waitUploads(ctx); err != nil {
		return err
	}

	if a.set.HasFailures() {
		for _, item := range a.set.Items() {
			if item.State != models.UploadStateFailed {
				continue
			}
			fmt.Println("Retrying upload:", item.SourceFile.Name)
			if _, err := a.orch.RetryAttachment(ctx, item.LocalID); err != nil {
				log.Printf("retry failed: %v", err)
			}
		}
		if err := a.waitUploads(ctx); err != nil {
			return err
		}
	}

	// Drop what still failed so the submission gate can pass.
	for _, item := range a.set.Items() {
		if item.State == models.UploadStateFailed {
			fmt.Println("Dropping failed attachment:", item.SourceFile.Name)
			a.orch.RemoveAttachment(item.LocalID)
		}
	}
	return nil
}

// waitUploads blocks until no upload is in flight or ctx is done.
func (a *App) waitUploads(ctx context.Context) error {
	if !a.set.AnyInFlight() {
		return nil
	}
	fmt.Println("Waiting for uploads...")

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.set.AnyInFlight() {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// readPendingFile loads a local file and sniffs its content type from the
// extension, falling back to content detection.
func readPendingFile(path string) (*models.PendingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &models.PendingFile{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// reportTicket waits for a mutation ticket and prints the outcome.
func (a *App) reportTicket(ctx context.Context, ticket *mutation.Ticket, okMsg string) error {
	if err := ticket.Wait(ctx); err != nil {
		return err
	}
	if err := ticket.Err(); err != nil {
		log.Printf("operation failed: %v", err)
		return err
	}
	fmt.Println(okMsg)
	return nil
}
