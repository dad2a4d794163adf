// Package gitutil provides helpers for working with template repository
// references and remotes.
package gitutil

import (
	"regexp"
	"strings"

	"github.com/template-doctor/template-doctor/internal/core"
)

var ownerRepoRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*/[A-Za-z0-9_.-]+$`)

// ParseTemplateRepo parses a template reference into owner and repo.
// Accepted forms: "owner/repo" and "https://github.com/owner/repo[.git]".
func ParseTemplateRepo(ref string) (owner, repo string, err error) {
	s := strings.TrimSpace(ref)
	s = strings.TrimSuffix(s, "/")

	if idx := strings.Index(s, "github.com/"); idx >= 0 {
		s = s[idx+len("github.com/"):]
	}
	s = strings.TrimSuffix(s, ".git")

	if !ownerRepoRegex.MatchString(s) {
		return "", "", core.NewError(core.KindInvalidFormat,
			"templateUrl must be \"owner/repo\" or a github.com repository URL, got "+ref)
	}

	parts := strings.SplitN(s, "/", 2)
	return parts[0], parts[1], nil
}

// CloneURL returns the https clone URL for an owner/repo pair.
func CloneURL(owner, repo string) string {
	return "https://github.com/" + owner + "/" + repo + ".git"
}
