package cloudbuild

import (
	"encoding/json"
	"strings"
)

const (
	repoNameSubstitution   = "REPO_NAME"
	branchNameSubstitution = "BRANCH_NAME"
	commitShaSubstitution  = "COMMIT_SHA"

	substitutionRepoPrefix = "github/"
)

// Build is the build-status record published by Cloud Build.
// Timestamps are kept as opaque strings, they are only ever displayed.
type Build struct {
	ID               string            `json:"id,omitempty"`
	ProjectID        string            `json:"projectId,omitempty"`
	Status           Status            `json:"status"`
	StatusDetail     string            `json:"statusDetail,omitempty"`
	LogURL           string            `json:"logUrl,omitempty"`
	CreateTime       string            `json:"createTime,omitempty"`
	StartTime        string            `json:"startTime,omitempty"`
	FinishTime       string            `json:"finishTime,omitempty"`
	Substitutions    map[string]string `json:"substitutions,omitempty"`
	BuildSource      *BuildSource      `json:"source,omitempty"`
	SourceProvenance *SourceProvenance `json:"sourceProvenance,omitempty"`

	// Raw is the decoded document as it arrived
	Raw json.RawMessage `json:"-"`
}

type BuildSource struct {
	RepoSource *RepoSource `json:"repoSource,omitempty"`
}

type RepoSource struct {
	ProjectID  string `json:"projectId,omitempty"`
	RepoName   string `json:"repoName,omitempty"`
	BranchName string `json:"branchName,omitempty"`
	TagName    string `json:"tagName,omitempty"`
	CommitSha  string `json:"commitSha,omitempty"`
}

type SourceProvenance struct {
	ResolvedRepoSource *RepoSource `json:"resolvedRepoSource,omitempty"`
}

// Source identifies the repository, branch and commit a build ran on.
// It is one of SubstitutionSource, ResolvedSource or UnrecognizedSource.
type Source interface {
	Repository() string
	Branch() string
	CommitSHA() string
	Recognized() bool
}

// SubstitutionSource is read from the REPO_NAME, BRANCH_NAME and COMMIT_SHA
// substitutions that triggered builds carry.
type SubstitutionSource struct {
	RepoName   string
	BranchName string
	CommitSha  string
}

func (s SubstitutionSource) Repository() string {
	return substitutionRepoPrefix + s.RepoName
}

func (s SubstitutionSource) Branch() string    { return s.BranchName }
func (s SubstitutionSource) CommitSHA() string { return s.CommitSha }
func (s SubstitutionSource) Recognized() bool  { return true }

// ResolvedSource is read from the resolved source provenance. Mirrored
// repositories are named like github_owner_repo.
type ResolvedSource struct {
	RepoName   string
	BranchName string
	CommitSha  string
}

func (s ResolvedSource) Repository() string {
	return strings.ReplaceAll(s.RepoName, "_", "/")
}

func (s ResolvedSource) Branch() string    { return s.BranchName }
func (s ResolvedSource) CommitSHA() string { return s.CommitSha }
func (s ResolvedSource) Recognized() bool  { return true }

// UnrecognizedSource is returned when the build carries neither layout
type UnrecognizedSource struct{}

func (UnrecognizedSource) Repository() string { return "" }
func (UnrecognizedSource) Branch() string     { return "" }
func (UnrecognizedSource) CommitSHA() string  { return "" }
func (UnrecognizedSource) Recognized() bool   { return false }

// Source tells which layout the build's source fields are in.
// Substitutions take precedence when both layouts are present.
func (b *Build) Source() Source {
	if repoName := b.Substitutions[repoNameSubstitution]; repoName != "" {
		return SubstitutionSource{
			RepoName:   repoName,
			BranchName: b.Substitutions[branchNameSubstitution],
			CommitSha:  b.Substitutions[commitShaSubstitution],
		}
	}

	resolved := b.resolvedRepoSource()
	if resolved != nil && resolved.RepoName != "" &&
		b.BuildSource != nil && b.BuildSource.RepoSource != nil {
		return ResolvedSource{
			RepoName:   resolved.RepoName,
			BranchName: b.BuildSource.RepoSource.BranchName,
			CommitSha:  resolved.CommitSha,
		}
	}

	return UnrecognizedSource{}
}

func (b *Build) resolvedRepoSource() *RepoSource {
	if b.SourceProvenance == nil {
		return nil
	}
	return b.SourceProvenance.ResolvedRepoSource
}
