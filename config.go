package site

import "github.com/goliatone/go-site/internal/runtimeconfig"

var (
	ErrSiteURLInvalid             = runtimeconfig.ErrSiteURLInvalid
	ErrMarkdownContentDirRequired = runtimeconfig.ErrMarkdownContentDirRequired
	ErrIconRuleMarkerInvalid      = runtimeconfig.ErrIconRuleMarkerInvalid
	ErrIconRuleDuplicate          = runtimeconfig.ErrIconRuleDuplicate
	ErrIconRulesConflict          = runtimeconfig.ErrIconRulesConflict
	ErrSitemapExcludeInvalid      = runtimeconfig.ErrSitemapExcludeInvalid
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrGeneratorPriorityInvalid   = runtimeconfig.ErrGeneratorPriorityInvalid
	ErrGeneratorChangeFreqInvalid = runtimeconfig.ErrGeneratorChangeFreqInvalid
	ErrContactTimeoutInvalid      = runtimeconfig.ErrContactTimeoutInvalid
	ErrContactEndpointInvalid     = runtimeconfig.ErrContactEndpointInvalid
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	IconTasksConfig      = runtimeconfig.IconTasksConfig
	IconRuleConfig       = runtimeconfig.IconRuleConfig
	GeneratorConfig      = runtimeconfig.GeneratorConfig
	ContactConfig        = runtimeconfig.ContactConfig
	ChecklistConfig      = runtimeconfig.ChecklistConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
