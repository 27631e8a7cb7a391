package media

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
)

type Kind int

const (
	KindPostImage Kind = iota
	KindAvatar
)

func (k Kind) prefix() string {
	if k == KindAvatar {
		return constants.AvatarsPrefix
	}
	return constants.PostImagesPrefix
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxNameLength = 100

// ObjectKey builds a collision-free key. Post images keep a sanitized copy of
// the original file name, avatars only keep its extension.
func ObjectKey(kind Kind, now time.Time, id, name, contentType string) string {
	stamp := strconv.FormatInt(now.UnixMilli(), 10) + "-" + id

	if kind == KindAvatar {
		return kind.prefix() + "/" + stamp + extension(name, contentType)
	}

	safe := strings.Trim(unsafeNameChars.ReplaceAllString(path.Base(name), "_"), "._")
	if len(safe) > maxNameLength {
		safe = safe[len(safe)-maxNameLength:]
	}
	if safe == "" {
		return kind.prefix() + "/" + stamp + extension(name, contentType)
	}
	return kind.prefix() + "/" + stamp + "-" + safe
}

func extension(name, contentType string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext != "" && len(ext) <= 5 && !unsafeNameChars.MatchString(ext) {
		return ext
	}
	if m := mimetype.Lookup(contentType); m != nil {
		return m.Extension()
	}
	return ""
}
