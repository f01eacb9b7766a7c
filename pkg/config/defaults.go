package config

import (
	"time"

	"votetopics/pkg/domain"
)

// Default returns the built-in configuration: the six outlets and the French keyword tables.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			MaxBodyBytes: 5 << 20,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RateLimitRPS:   1,
			RateLimitBurst: 3,
		},
		Pipeline: PipelineConfig{
			RunBudget:         3 * time.Minute,
			MaxItemsPerSource: 5,
			MinTitleLength:    20,
			DescriptionLimit:  500,
			ContentLimit:      1500,
			MaxFacts:          4,
			MinFacts:          2,
		},
		Store: StoreConfig{
			Driver:        DriverSupabase,
			Table:         defaultTable,
			MongoDatabase: defaultMongoDBName,
			MaxOpenConns:  5,
		},
		Cache:  CacheConfig{TTL: 6 * time.Hour},
		Events: EventsConfig{Topic: "topic.created"},
		Sweep: SweepConfig{
			TitlePatterns:       []string{"%budget 2024%", "%budget 24%", "%plf 2024%"},
			DescriptionPatterns: []string{"%budget 2024%"},
		},
		Rules:   defaultRules(time.Now()),
		Sources: defaultSources(),
	}
}

func defaultSources() []domain.Source {
	return []domain.Source{
		{Name: "Le Monde", FeedURL: "https://www.lemonde.fr/politique/rss_full.xml", Category: "Politique"},
		{Name: "Le Figaro", FeedURL: "https://www.lefigaro.fr/politique/rss", Category: "Politique"},
		{Name: "Libération", FeedURL: "https://www.liberation.fr/politique/rss/", Category: "Politique"},
		{Name: "Les Échos", FeedURL: "https://www.lesechos.fr/politique-societe/rss", Category: "Économie"},
		{Name: "Franceinfo", FeedURL: "https://www.francetvinfo.fr/politique.rss", Category: "Politique"},
		{Name: "Le Parisien", FeedURL: "https://www.leparisien.fr/politique/rss.xml", Category: "Politique"},
	}
}

// PastYears lists every year from 2020 up to, but excluding, the year of now.
func PastYears(now time.Time) []int {
	var years []int
	for y := 2020; y < now.Year(); y++ {
		years = append(years, y)
	}
	return years
}

func defaultRules(now time.Time) Rules {
	return Rules{
		Debatable: []string{
			"réforme", "proposition", "projet de loi", "mesure", "nouvelle loi",
			"débat", "discussion", "vote", "adoption", "rejet",
			"pour ou contre", "faut-il", "doit-on", "devrait-on",
			"budget", "allocation", "augmentation", "baisse",
			"interdiction", "autorisation", "légalisation",
			"création", "suppression", "modification",
			"investissement", "dépense", "économie",
			"nouvelle", "changement", "évolution",
		},
		Exclude: []string{
			"accident", "décès", "mort", "arrestation", "condamnation",
			"incendie", "inondation", "tempête", "catastrophe",
			"résultats", "victoire", "défaite", "nomination", "démission",
			"interview", "conférence de presse",
		},
		Stale: []string{
			"budget 2024", "plf 2024", "loi de finances 2024",
			"budget 2023", "budget 2022", "budget 2021",
			"élections 2022", "présidentielle 2022",
			"covid-19", "confinement", "pass sanitaire", "gilets jaunes", "retraites 2020",
		},
		PastYears:       PastYears(now),
		PastYearContext: []string{"budget", "projet", "loi de finances"},
		Retrospective: []string{
			"bilan 2024", "résultats 2024", "année écoulée",
			"premier trimestre", "deuxième trimestre", "troisième trimestre",
		},
		TitleBlocklist:  []string{"podcast", "direct"},
		QuestionMarkers: []string{"faut-il", "doit-on", "?"},
		Categories: []CategoryRule{
			{Name: "Politique", Keywords: []string{"macron", "gouvernement", "ministre"}},
			{Name: "Économie", Keywords: []string{"économie", "emploi", "inflation"}},
			{Name: "Éducation", Keywords: []string{"école", "université", "éducation"}},
			{Name: "Société", Keywords: []string{"immigration", "social", "retraite"}},
			{Name: "Environnement", Keywords: []string{"climat", "environnement", "nucléaire"}},
		},
	}
}

// mergeConfig overlays every non-zero field of override onto base.
func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.HTTP.Timeout > 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.MaxBodyBytes > 0 {
		base.HTTP.MaxBodyBytes = override.HTTP.MaxBodyBytes
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.RateLimitRPS > 0 {
		base.Server.RateLimitRPS = override.Server.RateLimitRPS
	}
	if override.Server.RateLimitBurst > 0 {
		base.Server.RateLimitBurst = override.Server.RateLimitBurst
	}
	if override.Server.Release {
		base.Server.Release = true
	}

	if override.Schedule.Cron != "" {
		base.Schedule.Cron = override.Schedule.Cron
	}

	base.Pipeline = mergePipeline(base.Pipeline, override.Pipeline)

	if override.Enricher.ReadabilityFallback {
		base.Enricher.ReadabilityFallback = true
	}

	base.Store = mergeStore(base.Store, override.Store)

	if override.Cache.RedisAddr != "" {
		base.Cache.RedisAddr = override.Cache.RedisAddr
	}
	if override.Cache.RedisPassword != "" {
		base.Cache.RedisPassword = override.Cache.RedisPassword
	}
	if override.Cache.RedisDB != 0 {
		base.Cache.RedisDB = override.Cache.RedisDB
	}
	if override.Cache.TTL > 0 {
		base.Cache.TTL = override.Cache.TTL
	}

	if len(override.Events.KafkaBrokers) > 0 {
		base.Events.KafkaBrokers = override.Events.KafkaBrokers
	}
	if override.Events.Topic != "" {
		base.Events.Topic = override.Events.Topic
	}

	if len(override.Sweep.TitlePatterns) > 0 {
		base.Sweep.TitlePatterns = override.Sweep.TitlePatterns
	}
	if len(override.Sweep.DescriptionPatterns) > 0 {
		base.Sweep.DescriptionPatterns = override.Sweep.DescriptionPatterns
	}

	base.Rules = mergeRules(base.Rules, override.Rules)

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}
	return base
}

func mergePipeline(base, override PipelineConfig) PipelineConfig {
	if override.RunBudget > 0 {
		base.RunBudget = override.RunBudget
	}
	if override.MaxItemsPerSource > 0 {
		base.MaxItemsPerSource = override.MaxItemsPerSource
	}
	if override.MinTitleLength > 0 {
		base.MinTitleLength = override.MinTitleLength
	}
	if override.DescriptionLimit > 0 {
		base.DescriptionLimit = override.DescriptionLimit
	}
	if override.ContentLimit > 0 {
		base.ContentLimit = override.ContentLimit
	}
	if override.MaxFacts > 0 {
		base.MaxFacts = override.MaxFacts
	}
	if override.MinFacts > 0 {
		base.MinFacts = override.MinFacts
	}
	return base
}

func mergeStore(base, override StoreConfig) StoreConfig {
	if override.Driver != "" {
		base.Driver = override.Driver
	}
	if override.Table != "" {
		base.Table = override.Table
	}
	if override.SupabaseURL != "" {
		base.SupabaseURL = override.SupabaseURL
	}
	if override.SupabaseKey != "" {
		base.SupabaseKey = override.SupabaseKey
	}
	if override.DSN != "" {
		base.DSN = override.DSN
	}
	if override.MongoURI != "" {
		base.MongoURI = override.MongoURI
	}
	if override.MongoDatabase != "" {
		base.MongoDatabase = override.MongoDatabase
	}
	if override.MaxOpenConns > 0 {
		base.MaxOpenConns = override.MaxOpenConns
	}
	return base
}

func mergeRules(base, override Rules) Rules {
	pick := func(b, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return b
	}
	base.Debatable = pick(base.Debatable, override.Debatable)
	base.Exclude = pick(base.Exclude, override.Exclude)
	base.Stale = pick(base.Stale, override.Stale)
	base.PastYearContext = pick(base.PastYearContext, override.PastYearContext)
	base.Retrospective = pick(base.Retrospective, override.Retrospective)
	base.TitleBlocklist = pick(base.TitleBlocklist, override.TitleBlocklist)
	base.QuestionMarkers = pick(base.QuestionMarkers, override.QuestionMarkers)
	if len(override.PastYears) > 0 {
		base.PastYears = override.PastYears
	}
	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}
	return base
}
