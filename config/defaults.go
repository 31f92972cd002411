package config

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Mnemonic: MnemonicConfig{
			Words:    24,
			Checksum: "sha256",
		},
		Vault: VaultConfig{
			Backend: BackendBadger,
		},
		Backup: BackupConfig{
			Encrypt:     false,
			Memory:      64 * 1024,
			Iterations:  3,
			Parallelism: 4,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
