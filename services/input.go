package services

import (
	"strings"
	"unicode/utf8"

	"github.com/cocodas/prierboard/models"
	"github.com/cocodas/prierboard/utils"
)

const maxTitleLength = 255

// PostInput carries the editable fields of a post. DeleteKeys is only read by UpdatePost.
type PostInput struct {
	Title      string
	Category   string
	Content    string
	DeleteKeys []string
}

type cleanInput struct {
	title    string
	category models.Category
	content  string
}

// ParseCategory accepts any letter case; an empty name selects GENERAL.
func ParseCategory(name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CategoryGeneral, nil
	}
	c := models.Category(strings.ToUpper(name))
	if !c.Valid() {
		return "", NewValidationError("category", "unknown category "+name)
	}
	return c, nil
}

func (in PostInput) clean() (cleanInput, error) {
	title := utils.SanitizePlain(in.Title)
	if title == "" {
		return cleanInput{}, NewValidationError("title", "title cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return cleanInput{}, NewValidationError("title", "title is too long")
	}
	content := strings.TrimSpace(utils.Sanitize(in.Content))
	if content == "" {
		return cleanInput{}, NewValidationError("content", "content cannot be empty")
	}
	category, err := ParseCategory(in.Category)
	if err != nil {
		return cleanInput{}, err
	}
	return cleanInput{title: title, category: category, content: content}, nil
}

// contentKeyword writes keyword the way stored content spells it, so "Tom & Jerry" finds
// content kept as "Tom &amp; Jerry".
func contentKeyword(keyword string) string {
	return strings.TrimSpace(utils.Sanitize(keyword))
}
