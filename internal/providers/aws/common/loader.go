package common

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

// fallbackRegion is used when a profile has no region configured so that all
// SDK clients can be constructed.
const fallbackRegion = "us-east-1"

// DefaultAWSClientProvider is the production implementation of AWSClientProvider.
// It reads credentials from the standard AWS shared config and credentials files
// using the AWS SDK v2.
//
// Inject a custom ClientFactory via NewDefaultAWSClientProviderWithFactory to
// replace real SDK clients with mocks in unit tests.
type DefaultAWSClientProvider struct {
	factory       ClientFactory
	defaultRegion string
	partition     string
	appID         string
}

// NewDefaultAWSClientProvider returns a provider backed by the real AWS SDK.
func NewDefaultAWSClientProvider() *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: NewClientSet}
}

// NewDefaultAWSClientProviderWithFactory returns a provider that uses f to
// create its ClientSet. Pass a mock factory in tests.
func NewDefaultAWSClientProviderWithFactory(f ClientFactory) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: f}
}

// WithDefaultRegion sets the region used when a profile configures none.
func (p *DefaultAWSClientProvider) WithDefaultRegion(region string) *DefaultAWSClientProvider {
	p.defaultRegion = region
	return p
}

// WithPartition pins the ARN partition instead of deriving it from the
// profile's home region.
func (p *DefaultAWSClientProvider) WithPartition(partition string) *DefaultAWSClientProvider {
	p.partition = partition
	return p
}

// WithAppID sets the application ID the SDK appends to its User-Agent.
func (p *DefaultAWSClientProvider) WithAppID(id string) *DefaultAWSClientProvider {
	p.appID = id
	return p
}

// ---------------------------------------------------------------------------
// AWSClientProvider implementation
// ---------------------------------------------------------------------------

// LoadProfile loads the AWS SDK config for the named profile and returns a
// fully populated ProfileConfig including the resolved account ID and
// initialised service clients.
//
// Pass an empty string to load the default profile.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, profile string) (*ProfileConfig, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if p.appID != "" {
		opts = append(opts, awsconfig.WithAppID(p.appID))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", profileDisplayName(profile), err)
	}

	if cfg.Region == "" {
		cfg.Region = p.defaultRegion
	}
	if cfg.Region == "" {
		cfg.Region = fallbackRegion
	}

	clients := p.factory(cfg)

	accountID, err := resolveAccountID(ctx, clients.STS)
	if err != nil {
		return nil, fmt.Errorf("resolve account ID for profile %q: %w", profileDisplayName(profile), err)
	}

	partition := p.partition
	if partition == "" {
		partition = PartitionForRegion(cfg.Region)
	}

	return &ProfileConfig{
		ProfileName: profileDisplayName(profile),
		AccountID:   accountID,
		Region:      cfg.Region,
		Partition:   partition,
		Config:      cfg,
		Clients:     clients,
	}, nil
}

// LoadAllProfiles discovers every profile defined in the shared credentials
// and config files, loads each one, and returns the successfully loaded set.
// Profiles that cannot be loaded (missing credentials, invalid config, etc.)
// are skipped with a warning so one bad profile does not block the rest.
func (p *DefaultAWSClientProvider) LoadAllProfiles(ctx context.Context) ([]*ProfileConfig, error) {
	names, err := discoverProfileNames(sharedCredentialsFile(), sharedConfigFile())
	if err != nil {
		return nil, fmt.Errorf("discover AWS profiles: %w", err)
	}

	log := zerolog.Ctx(ctx)
	var profiles []*ProfileConfig
	for _, name := range names {
		// LoadProfile uses an empty string for the default profile.
		arg := ""
		if name != "default" {
			arg = name
		}

		pc, loadErr := p.LoadProfile(ctx, arg)
		if loadErr != nil {
			log.Warn().Err(loadErr).Str("profile", name).Msg("skipping profile")
			continue
		}
		profiles = append(profiles, pc)
	}

	return profiles, nil
}

// GetActiveRegions returns all AWS regions that are enabled (opted-in) for
// the account associated with cfg. It uses EC2 DescribeRegions, which is a
// global call and works correctly regardless of the client's home region.
func (p *DefaultAWSClientProvider) GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error) {
	out, err := cfg.Clients.EC2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		// AllRegions false returns only regions the account has opted into.
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe regions for profile %q: %w", cfg.ProfileName, err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if r.RegionName != nil {
			regions = append(regions, *r.RegionName)
		}
	}
	return regions, nil
}

// ConfigForRegion returns a copy of cfg.Config with Region set to region.
func (p *DefaultAWSClientProvider) ConfigForRegion(cfg *ProfileConfig, region string) aws.Config {
	regional := cfg.Config
	regional.Region = region
	return regional
}

// ClientsForRegion builds a ClientSet against region. The profile's own
// clients are reused when region is its home region.
func (p *DefaultAWSClientProvider) ClientsForRegion(cfg *ProfileConfig, region string) *ClientSet {
	if region == cfg.Region && cfg.Clients != nil {
		return cfg.Clients
	}
	return p.factory(p.ConfigForRegion(cfg, region))
}

// ---------------------------------------------------------------------------
// Package-private helpers
// ---------------------------------------------------------------------------

// profileDisplayName returns a human-readable profile identifier. An empty
// string (the default profile) is shown as "default".
func profileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// resolveAccountID calls STS GetCallerIdentity to retrieve the numeric AWS
// account ID for the credentials currently loaded in stsClient.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}

func sharedCredentialsFile() string {
	if f := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); f != "" {
		return f
	}
	return awsconfig.DefaultSharedCredentialsFilename()
}

func sharedConfigFile() string {
	if f := os.Getenv("AWS_CONFIG_FILE"); f != "" {
		return f
	}
	return awsconfig.DefaultSharedConfigFilename()
}

// discoverProfileNames returns the deduplicated list of profile names found in
// the credentials and config files, credentials first. Missing files are
// ignored.
func discoverProfileNames(credentialsPath, configPath string) ([]string, error) {
	credProfiles, err := profilesFromFile(credentialsPath, false)
	if err != nil {
		return nil, err
	}
	cfgProfiles, err := profilesFromFile(configPath, true)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var all []string
	for _, name := range append(credProfiles, cfgProfiles...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		all = append(all, name)
	}
	return all, nil
}

// profilesFromFile returns the profile name of every section in the INI file
// at path. In the config file non-default profiles are written
// "[profile name]"; stripProfilePrefix removes that prefix. Sections such as
// "[sso-session x]" and "[services x]" are not profiles and are skipped.
func profilesFromFile(path string, stripProfilePrefix bool) ([]string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true, SkipUnrecognizableLines: true}, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var profiles []string
	for _, name := range f.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		if stripProfilePrefix && name != "default" {
			rest, ok := strings.CutPrefix(name, "profile ")
			if !ok {
				continue
			}
			name = rest
		}
		profiles = append(profiles, strings.TrimSpace(name))
	}
	return profiles, nil
}
