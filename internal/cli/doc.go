// Package cli provides command-line interface setup and configuration
// for lughat. It handles flag parsing, command creation, dotenv loading
// and configuration management using cobra and viper.
package cli
