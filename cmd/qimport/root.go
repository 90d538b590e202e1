package main

import (
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/typeofweb/qimport"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "qimport",
		Short:        "Desugar qualified ES-module imports",
		SilenceUsage: true,
		Long: `qimport rewrites the proposed qualified import form

    import { name1, name2 } as Identifier from "module-specifier";

into standard ES-module syntax, binding Identifier to an object whose
properties are exactly the listed named exports.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			initConfig()
			if viper.GetBool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("strategy", "namespace", "Rewrite strategy: namespace or named")
	cmd.PersistentFlags().Bool("no-freeze", false, "Leave the projection object mutable")
	cmd.PersistentFlags().Bool("strict", false, "Fail on any validation finding")
	cmd.PersistentFlags().StringSlice("ext", []string{".js", ".mjs"}, "File extensions picked up by tree walks")

	viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("strategy", cmd.PersistentFlags().Lookup("strategy"))
	viper.BindPFlag("no-freeze", cmd.PersistentFlags().Lookup("no-freeze"))
	viper.BindPFlag("strict", cmd.PersistentFlags().Lookup("strict"))
	viper.BindPFlag("ext", cmd.PersistentFlags().Lookup("ext"))

	cmd.AddCommand(rewriteCmd())
	cmd.AddCommand(checkCmd())
	cmd.AddCommand(exportsCmd())
	return cmd
}

func initConfig() {
	viper.SetConfigName(".qimport")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("qimport")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file %s", viper.ConfigFileUsed())
	}
}

func buildTransformer(extra ...qimport.Option) (*qimport.Transformer, error) {
	strategy, err := qimport.ParseStrategy(viper.GetString("strategy"))
	if err != nil {
		return nil, err
	}

	opts := []qimport.Option{
		qimport.WithStrategy(strategy),
	}
	if viper.GetBool("no-freeze") {
		opts = append(opts, qimport.WithoutFreeze())
	}
	if viper.GetBool("strict") {
		opts = append(opts, qimport.WithStrictValidation())
	}
	if exts := viper.GetStringSlice("ext"); len(exts) > 0 {
		opts = append(opts, qimport.WithExtensions(exts...))
	}
	if dir := viper.GetString("cache-dir"); dir != "" {
		opts = append(opts, qimport.WithCacheDir(dir))
	}
	opts = append(opts, extra...)
	return qimport.New(opts...)
}
