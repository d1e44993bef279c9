package config

const (
	// DefaultEntry is the entry that is loaded when none is given.
	DefaultEntry = "lua/init.lua"
	// DefaultStrategy is the load strategy that is used when none is given.
	DefaultStrategy = "parser"
	// DefaultAddr is the listen address of the serve command.
	DefaultAddr = ":8080"
)

// DefaultConfig contains settings from the [default] section.
type DefaultConfig struct {
	Entry    string
	Strategy string
}

// ForDefault returns configuration from the [default] section.
func (l *Loader) ForDefault() (c DefaultConfig) {
	c = DefaultConfig{Entry: DefaultEntry, Strategy: DefaultStrategy}

	sec, err := l.cfg.GetSection("default")
	if err != nil {
		return c
	}

	if v := sec.Key("entry").String(); v != "" {
		c.Entry = v
	}
	if v := sec.Key("strategy").String(); v != "" {
		c.Strategy = v
	}

	return
}

// ForDefault calls Loader.ForDefault on the DefaultLoader instance.
func ForDefault() DefaultConfig {
	return DefaultLoader.ForDefault()
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
}

// ForBucket returns configuration from the [s3://bucket] section.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	c.Bucket = bucket

	sec, err := l.cfg.GetSection("s3://" + bucket)
	if err != nil {
		return c
	}

	c.AWSProfile = sec.Key("aws-profile").String()

	if sec.HasKey("expected-bucket-owner") {
		v := sec.Key("expected-bucket-owner").String()
		c.ExpectedBucketOwner = &v
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) BucketConfig {
	return DefaultLoader.ForBucket(bucket)
}

// ServeConfig contains settings from the [serve] section.
type ServeConfig struct {
	Addr string
}

// ForServe returns configuration from the [serve] section.
func (l *Loader) ForServe() (c ServeConfig) {
	c.Addr = DefaultAddr

	sec, err := l.cfg.GetSection("serve")
	if err != nil {
		return c
	}

	if v := sec.Key("addr").String(); v != "" {
		c.Addr = v
	}

	return
}

// ForServe calls Loader.ForServe on the DefaultLoader instance.
func ForServe() ServeConfig {
	return DefaultLoader.ForServe()
}
