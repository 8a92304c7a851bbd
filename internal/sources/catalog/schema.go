package catalog

// File is the on-disk shape of catalog.yaml.
type File struct {
	Categories     []CategoryProps `yaml:"categories"`
	Suggestions    []string        `yaml:"suggestions"`
	Languages      []string        `yaml:"languages"`
	TrustedSources []string        `yaml:"trusted_sources"`
	Merchants      []MerchantProps `yaml:"merchants"`
}

type CategoryProps struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Icon  string `yaml:"icon,omitempty"`
}

// MerchantProps seeds the merchant directory when nothing is persisted.
type MerchantProps struct {
	ID            string  `yaml:"id"`
	BusinessName  string  `yaml:"name"`
	Category      string  `yaml:"category"`
	AppliedDate   string  `yaml:"applied,omitempty"`
	Status        string  `yaml:"status,omitempty"`
	BidAmount     float64 `yaml:"bid,omitempty"`
	BillingStatus string  `yaml:"billing,omitempty"`
}
