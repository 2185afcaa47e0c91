package services

import (
	"strings"

	"bust-order-backend/internal/models"
)

const promptBase = `SUBJECT
- A realistic sculpted bust of the person shown in the reference photo.

SHAPE
- One connected sculpture, a single mesh.
- The bust stops at mid-chest with a deliberate, clean cut.
- The underside is a flat plane so the print stands on its own.
- No loose or floating pieces, no thin spikes, no lettering, no watermark, no props.

BASE
- A base mass is allowed only as part of the same mesh (a plain slab or a bevelled block).
- Never a separate pedestal, plinth, column or stand, and no seam between bust and base.

LOOK
- One uniform matte material, like grey PLA or unfired clay.
- No marble, bronze, metal or stone textures. No gloss. No two-tone colouring.
- Neutral product lighting on a plain studio background, subject centred.`

var promptStyles = map[models.BustStyle]string{
	models.StyleClassical: `STYLE: CLASSICAL
- Traditional museum proportions with refined facial planes and clean anatomy.
- Light idealisation is fine.
- An integrated base may use soft bevels but stays one piece with a flat bottom.
- Style changes the sculpting, never the material.`,

	models.StyleModern: `STYLE: MODERN
- Contemporary silhouette with simplified surfaces.
- Any integrated base is minimal and geometric.
- Style changes shape language and cut lines, never the material.`,

	models.StyleCustom: `STYLE: CUSTOM
- Follow the customer's notes below before anything else.
- Keep it printable, one piece, flat bottom.
- Style changes geometry, never the material.`,
}

const promptVariation = `VARIATION
- Keep the likeness accurate.
- Let the style visibly change the neckline, the base silhouette and the surface treatment in the geometry.
- Different styles must not produce the same sculpt.`

// BuildPreviewPrompt assembles the clay preview prompt for a style. hint is
// optional free text from the customer.
func BuildPreviewPrompt(style models.BustStyle, hint string) string {
	styleBlock, ok := promptStyles[style]
	if !ok {
		styleBlock = promptStyles[models.StyleClassical]
	}

	parts := []string{promptBase, styleBlock}
	if h := strings.TrimSpace(hint); h != "" {
		parts = append(parts, "CUSTOMER NOTES\n"+h)
	}
	parts = append(parts, promptVariation)

	return strings.Join(parts, "\n\n")
}

// promptHint picks the stored style hint, falling back to the order notes.
func promptHint(o *models.Order) string {
	if o.StyleHint.Valid && strings.TrimSpace(o.StyleHint.String) != "" {
		return o.StyleHint.String
	}
	return o.Notes.String
}
