package tutor

import (
	"context"

	"mentora/internal/domain/models"
	"mentora/internal/llm"
)

// Illustrate generates a single image for the given description. Returns
// (nil, nil) when no image-capable provider is registered or generation
// fails: illustration is always non-fatal to the calling flow.
func (o *Orchestrator) Illustrate(ctx context.Context, description, size string) (*models.Attachment, error) {
	generator := o.registry.Images()
	if generator == nil {
		return nil, nil
	}

	image, err := generator.GenerateImage(ctx, &llm.ImageRequest{
		Description: description,
		Size:        size,
	})
	if err != nil {
		o.logger.Warn("illustration generation failed", "error", err)
		return nil, nil
	}
	return image, nil
}
