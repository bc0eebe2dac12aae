package cfg

type Cfg struct {
	// Storage configuration
	DBPath         string
	CategoriesFile string

	// Application configuration
	Port           string
	WorkerCount    int
	ScrapeInterval int
	PurgeInterval  int
	ExtractContent bool
	CacheTTL       int
	APIAccessKey   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
