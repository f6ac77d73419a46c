package content

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformed marks a document whose frontmatter block cannot be
// separated or decoded. The resolver treats these as skippable.
var ErrMalformed = errors.New("malformed document")

const frontmatterFence = "---"

type Video struct {
	Platform     string `yaml:"platform" json:"platform"`
	VideoID      string `yaml:"videoId" json:"videoId"`
	StartSeconds int    `yaml:"start" json:"start"`
	EndSeconds   int    `yaml:"end" json:"end"`
}

type QuizQuestion struct {
	Question     string   `yaml:"question" json:"question"`
	Options      []string `yaml:"options" json:"options"`
	CorrectIndex int      `yaml:"correctIndex" json:"correctIndex"`
	Explanation  string   `yaml:"explanation" json:"explanation"`
}

type Frontmatter struct {
	ID              string         `yaml:"id" json:"id"`
	Title           string         `yaml:"title" json:"title"`
	DurationMinutes int            `yaml:"duration" json:"duration"`
	Prerequisites   []string       `yaml:"prerequisites" json:"prerequisites,omitempty"`
	Tags            []string       `yaml:"tags" json:"tags,omitempty"`
	Video           *Video         `yaml:"video" json:"video,omitempty"`
	Quiz            []QuizQuestion `yaml:"quiz" json:"quiz,omitempty"`
	NextID          string         `yaml:"next" json:"next,omitempty"`
}

// Document is one fully parsed lesson: metadata block plus body.
type Document struct {
	Frontmatter Frontmatter `json:"frontmatter"`
	Content     string      `json:"content"`
	Slug        string      `json:"slug"`
	Track       string      `json:"track,omitempty"`
	Chapter     string      `json:"chapter,omitempty"`
}

// ParseDocument splits a raw lesson file into its YAML frontmatter and
// markdown body. The frontmatter must open the file with a `---` fence
// and close with another.
func ParseDocument(raw []byte) (Frontmatter, string, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	if !strings.HasPrefix(text, frontmatterFence+"\n") && text != frontmatterFence {
		return Frontmatter{}, "", ErrMalformed
	}
	rest := strings.TrimPrefix(text, frontmatterFence+"\n")

	end := strings.Index(rest, "\n"+frontmatterFence)
	var block, body string
	if strings.HasPrefix(rest, frontmatterFence) {
		// Empty metadata block.
		block = ""
		body = strings.TrimPrefix(rest, frontmatterFence)
	} else if end >= 0 {
		block = rest[:end]
		body = rest[end+len("\n"+frontmatterFence):]
	} else {
		return Frontmatter{}, "", ErrMalformed
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return Frontmatter{}, "", ErrMalformed
	}

	body = strings.TrimPrefix(body, "\n")
	return fm, body, nil
}
