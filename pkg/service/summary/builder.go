package summary

import (
	"strings"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
)

// Entry is one participant's input to the digest
type Entry struct {
	UserName      string
	CompletedWork string
	PlannedWork   string
	ParkingLot    string
}

// Options controls the digest headings and placeholders. Zero values fall
// back to the defaults.
type Options struct {
	Heading           string `toml:"heading"`
	ParkingLotHeading string `toml:"parking_lot_heading"`
	Placeholder       string `toml:"placeholder"`
}

// DefaultOptions returns the stock digest formatting
func DefaultOptions() Options {
	return Options{
		Heading:           "# Standup summary",
		ParkingLotHeading: "# Parking Lot",
		Placeholder:       "- (nothing reported)",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Heading == "" {
		o.Heading = def.Heading
	}
	if o.ParkingLotHeading == "" {
		o.ParkingLotHeading = def.ParkingLotHeading
	}
	if o.Placeholder == "" {
		o.Placeholder = def.Placeholder
	}
	return o
}

// Builder renders a deterministic textual digest from standup entries. It
// is pure: same entries, same output.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder with the given formatting options
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

// Build renders the digest. Participants appear in input order; each
// non-blank line of completed and planned work becomes one bullet, with a
// placeholder bullet when all lines are blank. Parking-lot lines are
// gathered into a trailing section annotated with their author, preserving
// input order across participants.
func (b *Builder) Build(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString(b.opts.Heading)
	sb.WriteString("\n")

	var parkingLot []string

	for _, e := range entries {
		sb.WriteString("\n## ")
		sb.WriteString(e.UserName)
		sb.WriteString("\n**Completed work**\n")
		writeBullets(&sb, e.CompletedWork, b.opts.Placeholder)
		sb.WriteString("**Planned work**\n")
		writeBullets(&sb, e.PlannedWork, b.opts.Placeholder)

		for _, line := range splitLines(e.ParkingLot) {
			parkingLot = append(parkingLot, line+" (by "+e.UserName+")")
		}
	}

	if len(parkingLot) > 0 {
		sb.WriteString("\n")
		sb.WriteString(b.opts.ParkingLotHeading)
		sb.WriteString("\n")
		for _, item := range parkingLot {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

// BuildFromSummary renders a persisted history record, resolving user names
// from the participants snapshot.
func (b *Builder) BuildFromSummary(s *model.StandupSummary) string {
	names := make(map[types.UserID]string, len(s.Participants))
	for _, u := range s.Participants {
		names[u.ID] = u.Name
	}

	entries := make([]Entry, 0, len(s.Responses))
	for _, r := range s.Responses {
		name, ok := names[r.UserID]
		if !ok {
			name = "Unknown"
		}
		entries = append(entries, Entry{
			UserName:      name,
			CompletedWork: r.CompletedWork,
			PlannedWork:   r.PlannedWork,
			ParkingLot:    r.ParkingLot,
		})
	}
	return b.Build(entries)
}

func writeBullets(sb *strings.Builder, text, placeholder string) {
	lines := splitLines(text)
	if len(lines) == 0 {
		sb.WriteString(placeholder)
		sb.WriteString("\n")
		return
	}
	for _, line := range lines {
		sb.WriteString("- ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// splitLines returns the non-blank trimmed lines of text, in order
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
