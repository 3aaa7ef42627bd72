package requestfiltering

import (
	"context"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
	"github.com/reglet-dev/reglet-config-sdk/feature"
)

const (
	// SectionPath addresses the request filtering section.
	SectionPath = "system.webServer/security/requestFiltering"

	// CollectionName is the collection holding extension rules.
	CollectionName = "fileExtensions"

	// FeatureName is the feature's display label.
	FeatureName = "File Name Extensions"

	// HelpURL is opened by ShowHelp.
	HelpURL = "http://go.microsoft.com/fwlink/?LinkId=210526"

	// RemovePrompt is shown before a rule is removed.
	RemovePrompt = "Are you sure that you want to remove the selected file extension?"
)

// Action identifiers exposed to hosts.
const (
	ActionAddExtension     = "AddExtension"
	ActionAddDenyExtension = "AddDenyExtension"
	ActionRemove           = "Remove"
)

// FileExtensionsFeature manages the fileExtensions collection.
type FileExtensionsFeature struct {
	*feature.Controller[FileExtension]
}

// Definition returns the static description of the feature.
func Definition() feature.Definition[FileExtension] {
	return feature.Definition[FileExtension]{
		Name:           FeatureName,
		HelpTopic:      HelpURL,
		SectionPath:    SectionPath,
		CollectionName: CollectionName,
		RemovePrompt:   RemovePrompt,
		Actions: []feature.ActionDef[FileExtension]{
			{
				ID:    ActionAddExtension,
				Label: "Allow File Name Extension...",
				Run:   (*feature.Controller[FileExtension]).AddAllowed,
			},
			{
				ID:    ActionAddDenyExtension,
				Label: "Deny File Name Extension...",
				Run:   (*feature.Controller[FileExtension]).AddDenied,
			},
			{
				ID:                ActionRemove,
				Label:             "Remove",
				RequiresSelection: true,
				Run:               (*feature.Controller[FileExtension]).Remove,
			},
		},
	}
}

// NewFileExtensionsFeature creates the feature over accessor. Collaborators
// and the logger are passed as feature options.
func NewFileExtensionsFeature(
	accessor configstore.Accessor,
	codec *ExtensionCodec,
	opts ...feature.Option[FileExtension],
) *FileExtensionsFeature {
	if codec == nil {
		codec = MustNewExtensionCodec()
	}
	return &FileExtensionsFeature{
		Controller: feature.New(Definition(), accessor, feature.Codec[FileExtension](codec), opts...),
	}
}

// AddExtension adds an allow rule.
func (f *FileExtensionsFeature) AddExtension(ctx context.Context) error {
	return f.Add(ctx, true)
}

// AddDenyExtension adds a deny rule.
func (f *FileExtensionsFeature) AddDenyExtension(ctx context.Context) error {
	return f.Add(ctx, false)
}
