package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	ServerPort        string
	DataDir           string
	BinDBPath         string
	MailingDBPath     string
	TesseractDataPath string
	MaxFileSize       int64
	Business          BusinessInfo
}

// BusinessInfo is the return address printed on exported shipping labels.
type BusinessInfo struct {
	Name         string
	AddressLine1 string
	City         string
	State        string
	ZipCode      string
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	dataDir := os.Getenv("SWIFTSALE_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, ".swiftsale")
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata"
	}

	return &Config{
		ServerPort:        serverPort,
		DataDir:           dataDir,
		BinDBPath:         filepath.Join(dataDir, "bins.db"),
		MailingDBPath:     filepath.Join(dataDir, "mailing_list.db"),
		TesseractDataPath: tesseractDataPath,
		MaxFileSize:       32 * 1024 * 1024, // 32 MB
		Business: BusinessInfo{
			Name:         envOr("SWIFTSALE_BUSINESS_NAME", "SwiftSale"),
			AddressLine1: os.Getenv("SWIFTSALE_BUSINESS_ADDRESS"),
			City:         os.Getenv("SWIFTSALE_BUSINESS_CITY"),
			State:        os.Getenv("SWIFTSALE_BUSINESS_STATE"),
			ZipCode:      os.Getenv("SWIFTSALE_BUSINESS_ZIP"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
