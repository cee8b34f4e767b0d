package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/pkg/config"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/laurelhq/laurel/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// defaultPoints assigns the default point value for each activity kind
var defaultPoints = map[models.ActivityKind]int{
	models.ActivityIssueOpened:    5,
	models.ActivityIssueClosed:    5,
	models.ActivityIssueAssigned:  2,
	models.ActivityPROpened:       10,
	models.ActivityPRClosed:       2,
	models.ActivityPRMerged:       20,
	models.ActivityPRReviewed:     15,
	models.ActivityPRCollaborated: 10,
	models.ActivityCommentCreated: 1,
	models.ActivityCommitCreated:  3,
}

// SyncService fetches activity from GitHub and translates it into
// contributor and activity records. Merged PRs get their turn-around
// time (merged-at minus created-at, in milliseconds) recorded in the
// activity metadata at observation time; the aggregate engine only ever
// reads that value back.
type SyncService struct {
	cfg             *config.Config
	client          *github.Client
	contributorRepo *repositories.ContributorRepository
	activityRepo    *repositories.ActivityRepository
}

// NewSyncService creates a new SyncService. The GitHub client is
// authenticated when a token is configured.
func NewSyncService(cfg *config.Config, contributorRepo *repositories.ContributorRepository, activityRepo *repositories.ActivityRepository) *SyncService {
	client := github.NewClient(nil)
	if cfg.GitHub.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.GitHub.Token},
		)
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	}

	return &SyncService{
		cfg:             cfg,
		client:          client,
		contributorRepo: contributorRepo,
		activityRepo:    activityRepo,
	}
}

// Sync fetches all configured repositories and persists the resulting
// contributors and activities. Contributors are written first so the
// activity foreign keys resolve; both writes are chunked idempotent
// upserts, so rerunning after a partial failure is safe.
func (s *SyncService) Sync(ctx context.Context) error {
	if len(s.cfg.Sync.Repos) == 0 {
		return errors.New("no repositories configured, set SYNC_REPOS")
	}

	collector := newActivityCollector()

	for _, fullName := range s.cfg.Sync.Repos {
		owner, repo, err := parseRepoFullName(fullName)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"owner": owner,
			"repo":  repo,
		}).Info("Syncing repository")

		if err := s.syncIssues(ctx, owner, repo, collector); err != nil {
			return fmt.Errorf("failed to sync issues for %s: %w", fullName, err)
		}
		if err := s.syncPullRequests(ctx, owner, repo, collector); err != nil {
			return fmt.Errorf("failed to sync pull requests for %s: %w", fullName, err)
		}
		if err := s.syncComments(ctx, owner, repo, collector); err != nil {
			return fmt.Errorf("failed to sync comments for %s: %w", fullName, err)
		}
		if err := s.syncCommits(ctx, owner, repo, collector); err != nil {
			return fmt.Errorf("failed to sync commits for %s: %w", fullName, err)
		}
	}

	return s.persist(collector)
}

func (s *SyncService) persist(collector *activityCollector) error {
	contributors := collector.contributorList()
	affected, err := s.contributorRepo.UpsertBatch(contributors)
	if err != nil {
		return fmt.Errorf("failed to upsert contributors: %w", err)
	}
	metrics.ObserveBatch("contributors", int64(len(contributors)), affected)
	logger.WithFields(logrus.Fields{
		"entity":    "contributors",
		"submitted": len(contributors),
		"affected":  affected,
	}).Info("Upserted contributors")

	// Role is the one contributor field later syncs may change, via a
	// targeted update rather than the first-write-wins upsert.
	for username := range collector.bots {
		if err := s.contributorRepo.UpdateRole(username, models.ContributorRoleBot); err != nil {
			return fmt.Errorf("failed to mark %s as bot: %w", username, err)
		}
	}

	affected, err = s.activityRepo.UpsertBatch(collector.activities)
	if err != nil {
		return fmt.Errorf("failed to upsert activities: %w", err)
	}
	metrics.ObserveBatch("activities", int64(len(collector.activities)), affected)
	logger.WithFields(logrus.Fields{
		"entity":    "activities",
		"submitted": len(collector.activities),
		"affected":  affected,
	}).Info("Upserted activities")

	return nil
}

func (s *SyncService) syncIssues(ctx context.Context, owner, repo string, collector *activityCollector) error {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: s.cfg.Sync.PerPage},
	}

	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return err
		}

		for _, issue := range issues {
			// Pull requests show up in the issues list too; they are
			// handled by syncPullRequests.
			if issue.IsPullRequest() {
				continue
			}

			author := issue.GetUser()
			if author.GetLogin() == "" {
				continue
			}
			collector.addContributor(author)

			number := issue.GetNumber()
			opened := models.NewActivity(
				activitySlug(models.ActivityIssueOpened, owner, repo, fmt.Sprintf("%d", number)),
				author.GetLogin(),
				models.ActivityIssueOpened,
				issue.GetCreatedAt().Time,
			)
			opened.Title = issue.Title
			opened.Link = issue.HTMLURL
			collector.addActivity(opened)

			if issue.ClosedAt != nil {
				closed := models.NewActivity(
					activitySlug(models.ActivityIssueClosed, owner, repo, fmt.Sprintf("%d", number)),
					author.GetLogin(),
					models.ActivityIssueClosed,
					issue.GetClosedAt().Time,
				)
				closed.Title = issue.Title
				closed.Link = issue.HTMLURL
				collector.addActivity(closed)
			}

			for _, assignee := range issue.Assignees {
				if assignee.GetLogin() == "" {
					continue
				}
				collector.addContributor(assignee)
				assigned := models.NewActivity(
					activitySlug(models.ActivityIssueAssigned, owner, repo, fmt.Sprintf("%d-%s", number, assignee.GetLogin())),
					assignee.GetLogin(),
					models.ActivityIssueAssigned,
					issue.GetCreatedAt().Time,
				)
				assigned.Title = issue.Title
				assigned.Link = issue.HTMLURL
				collector.addActivity(assigned)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return nil
}

func (s *SyncService) syncPullRequests(ctx context.Context, owner, repo string, collector *activityCollector) error {
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: s.cfg.Sync.PerPage},
	}

	for {
		pullRequests, resp, err := s.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return err
		}

		for _, pr := range pullRequests {
			author := pr.GetUser()
			if author.GetLogin() == "" {
				continue
			}
			collector.addContributor(author)

			number := pr.GetNumber()
			opened := models.NewActivity(
				activitySlug(models.ActivityPROpened, owner, repo, fmt.Sprintf("%d", number)),
				author.GetLogin(),
				models.ActivityPROpened,
				pr.GetCreatedAt().Time,
			)
			opened.Title = pr.Title
			opened.Link = pr.HTMLURL
			collector.addActivity(opened)

			switch {
			case pr.MergedAt != nil:
				merged := models.NewActivity(
					activitySlug(models.ActivityPRMerged, owner, repo, fmt.Sprintf("%d", number)),
					author.GetLogin(),
					models.ActivityPRMerged,
					pr.GetMergedAt().Time,
				)
				merged.Title = pr.Title
				merged.Link = pr.HTMLURL
				turnaround := pr.GetMergedAt().Time.Sub(pr.GetCreatedAt().Time).Milliseconds()
				merged.SetMetadata(models.MetadataKeyTurnaround, turnaround)
				collector.addActivity(merged)

				// Assignees other than the author collaborated on the
				// merged PR.
				for _, assignee := range pr.Assignees {
					if assignee.GetLogin() == "" || assignee.GetLogin() == author.GetLogin() {
						continue
					}
					collector.addContributor(assignee)
					collaborated := models.NewActivity(
						activitySlug(models.ActivityPRCollaborated, owner, repo, fmt.Sprintf("%d-%s", number, assignee.GetLogin())),
						assignee.GetLogin(),
						models.ActivityPRCollaborated,
						pr.GetMergedAt().Time,
					)
					collaborated.Title = pr.Title
					collaborated.Link = pr.HTMLURL
					collector.addActivity(collaborated)
				}
			case pr.ClosedAt != nil:
				closed := models.NewActivity(
					activitySlug(models.ActivityPRClosed, owner, repo, fmt.Sprintf("%d", number)),
					author.GetLogin(),
					models.ActivityPRClosed,
					pr.GetClosedAt().Time,
				)
				closed.Title = pr.Title
				closed.Link = pr.HTMLURL
				collector.addActivity(closed)
			}

			if err := s.syncReviews(ctx, owner, repo, number, collector); err != nil {
				return err
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return nil
}

func (s *SyncService) syncReviews(ctx context.Context, owner, repo string, prNumber int, collector *activityCollector) error {
	opts := &github.ListOptions{PerPage: s.cfg.Sync.PerPage}

	for {
		reviews, resp, err := s.client.PullRequests.ListReviews(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return err
		}

		for _, review := range reviews {
			reviewer := review.GetUser()
			if reviewer.GetLogin() == "" {
				continue
			}
			collector.addContributor(reviewer)

			reviewed := models.NewActivity(
				activitySlug(models.ActivityPRReviewed, owner, repo, fmt.Sprintf("%d-%d", prNumber, review.GetID())),
				reviewer.GetLogin(),
				models.ActivityPRReviewed,
				review.GetSubmittedAt().Time,
			)
			reviewed.Link = review.HTMLURL
			collector.addActivity(reviewed)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return nil
}

func (s *SyncService) syncComments(ctx context.Context, owner, repo string, collector *activityCollector) error {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: s.cfg.Sync.PerPage},
	}

	for {
		// Issue number 0 lists comments across the whole repository.
		comments, resp, err := s.client.Issues.ListComments(ctx, owner, repo, 0, opts)
		if err != nil {
			return err
		}

		for _, comment := range comments {
			author := comment.GetUser()
			if author.GetLogin() == "" {
				continue
			}
			collector.addContributor(author)

			created := models.NewActivity(
				activitySlug(models.ActivityCommentCreated, owner, repo, fmt.Sprintf("%d", comment.GetID())),
				author.GetLogin(),
				models.ActivityCommentCreated,
				comment.GetCreatedAt().Time,
			)
			created.Link = comment.HTMLURL
			collector.addActivity(created)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return nil
}

func (s *SyncService) syncCommits(ctx context.Context, owner, repo string, collector *activityCollector) error {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: s.cfg.Sync.PerPage},
	}

	for {
		commits, resp, err := s.client.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return err
		}

		for _, commit := range commits {
			// The author is nil when the commit email does not match a
			// GitHub account.
			author := commit.GetAuthor()
			if author.GetLogin() == "" {
				continue
			}
			collector.addContributor(author)

			created := models.NewActivity(
				activitySlug(models.ActivityCommitCreated, owner, repo, commit.GetSHA()),
				author.GetLogin(),
				models.ActivityCommitCreated,
				commit.GetCommit().GetAuthor().GetDate().Time,
			)
			message := commit.GetCommit().GetMessage()
			if idx := strings.IndexByte(message, '\n'); idx >= 0 {
				message = message[:idx]
			}
			if message != "" {
				created.Title = &message
			}
			created.Link = commit.HTMLURL
			collector.addActivity(created)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return nil
}

// activityCollector accumulates one sync run's working set: discovered
// contributors keyed by username and activities deduplicated by slug
type activityCollector struct {
	contributors map[string]*models.Contributor
	bots         map[string]bool
	activities   []*models.Activity
	seen         map[string]bool
}

func newActivityCollector() *activityCollector {
	return &activityCollector{
		contributors: make(map[string]*models.Contributor),
		bots:         make(map[string]bool),
		seen:         make(map[string]bool),
	}
}

func (c *activityCollector) addContributor(user *github.User) {
	username := user.GetLogin()
	if _, ok := c.contributors[username]; !ok {
		contributor := models.NewContributor(username)
		contributor.Name = user.Name
		contributor.AvatarURL = user.AvatarURL
		contributor.ProfileURL = user.HTMLURL
		c.contributors[username] = contributor
	}
	if user.GetType() == "Bot" || strings.HasSuffix(username, "[bot]") {
		c.bots[username] = true
	}
}

func (c *activityCollector) addActivity(activity *models.Activity) {
	if c.seen[activity.Slug] {
		return
	}
	c.seen[activity.Slug] = true

	if points, ok := defaultPoints[activity.Kind]; ok {
		p := points
		activity.Points = &p
	}
	c.activities = append(c.activities, activity)
}

func (c *activityCollector) contributorList() []*models.Contributor {
	contributors := make([]*models.Contributor, 0, len(c.contributors))
	for _, contributor := range c.contributors {
		contributors = append(contributors, contributor)
	}
	return contributors
}

// activitySlug builds a deterministic, globally unique slug for an
// observed event, e.g. "pr-merged-acme-widgets-42"
func activitySlug(kind models.ActivityKind, owner, repo, ref string) string {
	return fmt.Sprintf("%s-%s-%s-%s", strings.ReplaceAll(string(kind), "_", "-"), owner, repo, ref)
}

// parseRepoFullName splits "owner/repo" into its parts
func parseRepoFullName(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name %q, expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
