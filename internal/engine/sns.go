package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/metrics"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/policy"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/providers/aws/common"
	awssns "github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/providers/aws/sns"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/rules"
)

// SNSEngine implements Engine for AuditTypeSNS.
// It coordinates topic collection, rule evaluation, and report assembly.
// It never calls AWS SDK clients directly; all calls are delegated to the
// AWSClientProvider and TopicCollector.
type SNSEngine struct {
	provider  common.AWSClientProvider
	collector awssns.TopicCollector
	registry  rules.RuleRegistry
	policy    *policy.PolicyConfig
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewSNSEngine constructs an SNSEngine wired to the supplied provider, topic
// collector, rule registry and optional policy. m may be nil.
func NewSNSEngine(
	provider common.AWSClientProvider,
	collector awssns.TopicCollector,
	registry rules.RuleRegistry,
	policyCfg *policy.PolicyConfig,
	m *metrics.Metrics,
) *SNSEngine {
	return &SNSEngine{
		provider:  provider,
		collector: collector,
		registry:  registry,
		policy:    policyCfg,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// target is one (profile, regions) pair the stream walks.
type target struct {
	profile *common.ProfileConfig
	regions []string
}

// streamHooks lets RunAudit observe what the stream visits without
// changing what it yields. Nil hooks are skipped.
type streamHooks struct {
	target func(target)
	topic  func(models.Topic)
}

// RunAudit implements Engine. Only AuditTypeSNS is accepted.
//
// Findings are collected from Stream, sorted by severity and summarised.
// Check and region errors are gathered into the report; any other error
// aborts the run.
func (e *SNSEngine) RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error) {
	if opts.AuditType != AuditTypeSNS {
		return nil, fmt.Errorf("unsupported audit type: %q", opts.AuditType)
	}
	start := time.Now()

	var (
		targets  []target
		findings []models.Finding
		errs     []models.CheckErrorRecord
		topics   int
	)
	hooks := streamHooks{
		target: func(t target) { targets = append(targets, t) },
		topic:  func(models.Topic) { topics++ },
	}

	for f, err := range e.stream(ctx, opts, hooks) {
		if err != nil {
			rec, ok := ErrorRecord(err)
			if !ok {
				return nil, err
			}
			errs = append(errs, rec)
			continue
		}
		findings = append(findings, f)
	}

	e.metrics.ObserveDuration(time.Since(start))
	return e.buildReport(targets, findings, errs, topics), nil
}

// Stream returns the findings of the audit lazily, in topic order and, per
// topic, in rule registration order. Each topic is fetched only after every
// finding of the previous topic has been consumed. Breaking out of the range
// loop stops all further collection.
//
// A yielded error is a *rules.CheckError, a *RegionError, or a fatal error
// after which the sequence ends.
func (e *SNSEngine) Stream(ctx context.Context, opts AuditOptions) iter.Seq2[models.Finding, error] {
	return e.stream(ctx, opts, streamHooks{})
}

func (e *SNSEngine) stream(ctx context.Context, opts AuditOptions, hooks streamHooks) iter.Seq2[models.Finding, error] {
	return func(yield func(models.Finding, error) bool) {
		if !e.policy.DomainEnabled(policy.DomainSNS) {
			return
		}
		log := zerolog.Ctx(ctx)

		profiles, err := e.loadProfiles(ctx, opts)
		if err != nil {
			yield(models.Finding{}, err)
			return
		}

		audited := 0
		for _, profile := range profiles {
			regions, err := e.resolveRegions(ctx, profile, opts.Regions)
			if err != nil {
				if !opts.AllProfiles {
					yield(models.Finding{}, fmt.Errorf("resolve regions for profile %q: %w", profile.ProfileName, err))
					return
				}
				log.Warn().Err(err).Str("profile", profile.ProfileName).Msg("skipping profile")
				continue
			}
			audited++
			if hooks.target != nil {
				hooks.target(target{profile: profile, regions: regions})
			}
			for _, region := range regions {
				if !e.auditRegion(ctx, opts, hooks, profile, region, yield) {
					return
				}
			}
		}

		if audited == 0 {
			yield(models.Finding{}, errors.New("all profiles failed; no SNS data collected"))
		}
	}
}

// auditRegion streams the findings of one region. It returns false when the
// consumer stopped or the context was cancelled.
func (e *SNSEngine) auditRegion(
	ctx context.Context,
	opts AuditOptions,
	hooks streamHooks,
	profile *common.ProfileConfig,
	region string,
	yield func(models.Finding, error) bool,
) bool {
	log := zerolog.Ctx(ctx).With().Str("profile", profile.ProfileName).Str("region", region).Logger()
	log.Debug().Msg("auditing region")

	clients := e.provider.ClientsForRegion(profile, region)
	count := 0
	for topic, err := range e.collector.Topics(ctx, clients.SNS, region) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield(models.Finding{}, ctxErr)
				return false
			}
			e.metrics.IncRegionFailure(region)
			log.Warn().Err(err).Msg("region skipped")
			return yield(models.Finding{}, &RegionError{Profile: profile.ProfileName, Region: region, Err: err})
		}

		count++
		e.metrics.IncTopic(region)
		if hooks.topic != nil {
			hooks.topic(topic)
		}
		rctx := rules.RuleContext{
			AccountID:         profile.AccountID,
			Region:            region,
			Partition:         profile.Partition,
			Profile:           profile.ProfileName,
			Topic:             topic,
			NormalizeSeverity: opts.NormalizeSeverity,
			Now:               e.now(),
		}
		for _, rule := range e.registry.All() {
			if !e.policy.RuleEnabled(rule.ID()) {
				continue
			}
			if !e.evaluate(rule, rctx, yield) {
				return false
			}
		}
	}
	log.Info().Int("topics", count).Msg("region audited")
	return true
}

// evaluate runs one rule against one topic and yields its outcome.
func (e *SNSEngine) evaluate(rule rules.Rule, rctx rules.RuleContext, yield func(models.Finding, error) bool) bool {
	findings, err := rule.Evaluate(rctx)
	if err != nil {
		e.metrics.IncCheckError(rule.ID())
		return yield(models.Finding{}, err)
	}
	for _, f := range policy.ApplyPolicy(findings, policy.DomainSNS, e.policy) {
		e.metrics.IncFinding(f)
		if !yield(f, nil) {
			return false
		}
	}
	return true
}

func (e *SNSEngine) loadProfiles(ctx context.Context, opts AuditOptions) ([]*common.ProfileConfig, error) {
	if !opts.AllProfiles {
		profile, err := e.provider.LoadProfile(ctx, opts.Profile)
		if err != nil {
			return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
		}
		return []*common.ProfileConfig{profile}, nil
	}
	profiles, err := e.provider.LoadAllProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, errors.New("no AWS profiles found")
	}
	return profiles, nil
}

// resolveRegions returns the explicit region list or discovers active regions.
func (e *SNSEngine) resolveRegions(
	ctx context.Context,
	profile *common.ProfileConfig,
	explicit []string,
) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	return e.provider.GetActiveRegions(ctx, profile)
}

// buildReport assembles the final AuditReport. A single audited profile
// names itself in the report; several are reported as "multi".
func (e *SNSEngine) buildReport(
	targets []target,
	findings []models.Finding,
	errs []models.CheckErrorRecord,
	topicCount int,
) *models.AuditReport {
	report := &models.AuditReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: e.now(),
		AuditType:   string(AuditTypeSNS),
		Findings:    findings,
		Errors:      errs,
	}

	seen := make(map[string]struct{})
	for _, t := range targets {
		for _, r := range t.regions {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				report.Regions = append(report.Regions, r)
			}
		}
	}

	switch len(targets) {
	case 0:
	case 1:
		p := targets[0].profile
		report.Profile = p.ProfileName
		report.AccountID = p.AccountID
		report.Partition = p.Partition
	default:
		report.Profile = "multi"
	}

	if report.Findings == nil {
		report.Findings = []models.Finding{}
	}
	sortFindings(report.Findings)
	report.Summary = computeSummary(report.Findings, len(errs), topicCount)
	return report
}

// sortFindings sorts findings in-place: failed before passed, then severity
// descending. The sort is stable so stream order is kept within a group.
func sortFindings(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		pi, pj := findings[i].Passed(), findings[j].Passed()
		if pi != pj {
			return !pi
		}
		return policy.Rank(findings[i].Severity) > policy.Rank(findings[j].Severity)
	})
}

// computeSummary aggregates finding counts by status and severity. The
// legacy "Low" label counts as LOW.
func computeSummary(findings []models.Finding, errCount, topicCount int) models.AuditSummary {
	s := models.AuditSummary{
		TotalFindings: len(findings),
		Errors:        errCount,
		TopicsAudited: topicCount,
	}
	for _, f := range findings {
		if f.Passed() {
			s.PassedFindings++
		} else {
			s.FailedFindings++
		}
		switch f.Severity.Canonical() {
		case models.SeverityCritical:
			s.CriticalFindings++
		case models.SeverityHigh:
			s.HighFindings++
		case models.SeverityMedium:
			s.MediumFindings++
		case models.SeverityLow:
			s.LowFindings++
		case models.SeverityInformational:
			s.InformationalFindings++
		}
	}
	return s
}
