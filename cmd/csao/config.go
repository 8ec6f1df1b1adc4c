package main

import (
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig 对应 configs/server.yaml
type ServerConfig struct {
	Server struct {
		Port  string `yaml:"port"`
		Debug bool   `yaml:"debug"`
	} `yaml:"server"`
	Paths struct {
		Complementarity string `yaml:"complementarity"`
		Catalog         string `yaml:"catalog"`
		Pipelines       string `yaml:"pipelines"`
		Impressions     string `yaml:"impressions"`
	} `yaml:"paths"`
	Feature struct {
		TimeoutMs int `yaml:"timeout_ms"` // 单次特征读取的硬超时
	} `yaml:"feature"`
	Retention struct {
		ImpressionDays int `yaml:"impression_days"` // 曝光记录保留天数
	} `yaml:"retention"`
	Insight struct {
		Endpoint string `yaml:"endpoint"`
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
	} `yaml:"insight"`
}

func loadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// cliFlags 命令行参数
type cliFlags struct {
	simulate bool
}

// InitServerConfig 初始化服务器配置，优先级：命令行参数 > 配置文件 > 默认值
func InitServerConfig() (*ServerConfig, *cliFlags) {
	configPath := flag.String("config", "configs/server.yaml", "Path to server config file")
	portFlag := flag.String("port", "", "Server port")
	debugFlag := flag.Bool("debug", false, "Enable debug logging and trace output")
	complementarityFlag := flag.String("complementarity", "", "Path to complementarity.yaml")
	catalogFlag := flag.String("catalog", "", "Path to catalog.yaml")
	pipelineFlag := flag.String("pipelines", "", "Path to pipelines.json")
	impressionsFlag := flag.String("impressions", "", "Path to impressions.jsonl")
	simulateFlag := flag.Bool("simulate", false, "Run the cart add-on simulation and exit")
	flag.Parse()

	// 1. 初始化默认值
	serverCfg := &ServerConfig{}
	serverCfg.Server.Port = "8080"
	serverCfg.Server.Debug = false
	serverCfg.Paths.Complementarity = "configs/complementarity.yaml"
	serverCfg.Paths.Catalog = "configs/catalog.yaml"
	serverCfg.Paths.Pipelines = "configs/pipelines.json"
	serverCfg.Paths.Impressions = "data/impressions.jsonl"
	serverCfg.Feature.TimeoutMs = 50
	serverCfg.Retention.ImpressionDays = 30

	// 2. 尝试加载配置文件，文件不存在就用硬编码默认值
	if loadedCfg, err := loadServerConfig(*configPath); err == nil {
		if loadedCfg.Server.Port != "" {
			serverCfg.Server.Port = loadedCfg.Server.Port
		}
		if loadedCfg.Server.Debug {
			serverCfg.Server.Debug = true
		}
		if loadedCfg.Paths.Complementarity != "" {
			serverCfg.Paths.Complementarity = loadedCfg.Paths.Complementarity
		}
		if loadedCfg.Paths.Catalog != "" {
			serverCfg.Paths.Catalog = loadedCfg.Paths.Catalog
		}
		if loadedCfg.Paths.Pipelines != "" {
			serverCfg.Paths.Pipelines = loadedCfg.Paths.Pipelines
		}
		if loadedCfg.Paths.Impressions != "" {
			serverCfg.Paths.Impressions = loadedCfg.Paths.Impressions
		}
		if loadedCfg.Feature.TimeoutMs > 0 {
			serverCfg.Feature.TimeoutMs = loadedCfg.Feature.TimeoutMs
		}
		if loadedCfg.Retention.ImpressionDays > 0 {
			serverCfg.Retention.ImpressionDays = loadedCfg.Retention.ImpressionDays
		}
		serverCfg.Insight = loadedCfg.Insight
	} else {
		log.Printf("Info: Could not load config file '%s': %v. Using defaults or flags.", *configPath, err)
	}

	// 3. 应用命令行参数 (优先级最高)
	if *portFlag != "" {
		serverCfg.Server.Port = *portFlag
	}
	if *debugFlag {
		serverCfg.Server.Debug = true
	}
	if *complementarityFlag != "" {
		serverCfg.Paths.Complementarity = *complementarityFlag
	}
	if *catalogFlag != "" {
		serverCfg.Paths.Catalog = *catalogFlag
	}
	if *pipelineFlag != "" {
		serverCfg.Paths.Pipelines = *pipelineFlag
	}
	if *impressionsFlag != "" {
		serverCfg.Paths.Impressions = *impressionsFlag
	}

	return serverCfg, &cliFlags{simulate: *simulateFlag}
}
