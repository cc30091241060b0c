package conf

import "github.com/spf13/viper"

// setDefaultConfig sets the default configuration values.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("log.enabled", false)
	viper.SetDefault("log.path", "zoonyper.log")
	viper.SetDefault("log.maxsize", 100)
	viper.SetDefault("log.maxbackups", 3)
	viper.SetDefault("log.maxage", 28)

	viper.SetDefault("input.path", "")
	viper.SetDefault("input.classificationspath", "")
	viper.SetDefault("input.subjectspath", "")
	viper.SetDefault("input.workflowspath", "")
	viper.SetDefault("input.commentspath", "")
	viper.SetDefault("input.tagspath", "")

	viper.SetDefault("load.redactusers", true)
	viper.SetDefault("load.trimpaths", true)
	viper.SetDefault("load.datelayout", "2006-01-02")

	viper.SetDefault("download.dir", "downloads")
	viper.SetDefault("download.timeoutseconds", 5)
	viper.SetDefault("download.sleepminseconds", 2)
	viper.SetDefault("download.sleepmaxseconds", 5)
	viper.SetDefault("download.requestspersecond", 1.0)
	viper.SetDefault("download.maxretries", 3)
	viper.SetDefault("download.organizebyworkflow", true)
	viper.SetDefault("download.organizebysubjectid", true)

	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "zoonyper.db")
}
