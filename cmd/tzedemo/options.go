package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/sirupsen/logrus"
)

const (
	dbDir   = "db"   // 数据库目录
	logsDir = "logs" // 日志目录
)

// Options 是用于创建演示程序的参数
type Options struct {
	InstanceId string // 实例标识符，用于区分日志文件

	DataDir  string // 数据根目录
	Network  string // 网络名称：mainnet、testnet3、regtest、simnet
	Mnemonic string // 钱包助记词
	Password string // 钱包密码
	LogLevel string // 日志级别

	Faucet btcutil.Amount // 没有可花费输出时注入的金额
	Pay    btcutil.Amount // 透明输出金额
	Fee    btcutil.Amount // 每笔交易的费用
	PayTo  string         // 透明输出地址，为空时使用钱包的第二个地址

	params *chaincfg.Params
}

// DefaultOptions 设置一个推荐选项列表
func DefaultOptions() *Options {
	return &Options{
		DataDir:  "tzedata",
		Network:  chaincfg.RegressionNetParams.Name,
		LogLevel: logrus.InfoLevel.String(),
		Faucet:   btcutil.SatoshiPerBitcoin,
		Pay:      1_000_000,
		Fee:      1_000,
	}
}

// BuildInstanceId 设置实例ID，没有给出时生成随机值
func (opt *Options) BuildInstanceId(instanceId ...string) {
	if len(instanceId) > 0 && instanceId[0] != "" {
		opt.InstanceId = instanceId[0]
		return
	}
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		opt.InstanceId = "default"
		return
	}
	opt.InstanceId = hex.EncodeToString(buf)
}

// BuildDataDir 设置数据根目录
func (opt *Options) BuildDataDir(path string) {
	// 检查路径是否为空
	if path == "" {
		return
	}
	opt.DataDir = filepath.Clean(path)
}

// DBPath 数据库目录
func (opt *Options) DBPath() string {
	return filepath.Join(opt.DataDir, dbDir)
}

// LogsPath 日志目录
func (opt *Options) LogsPath() string {
	return filepath.Join(opt.DataDir, logsDir)
}

// Params 返回网络参数，须在 CheckAndSetOptions 之后调用
func (opt *Options) Params() *chaincfg.Params {
	return opt.params
}

// CheckAndSetOptions 检查并设置选项
func (opt *Options) CheckAndSetOptions() error {
	if opt.Mnemonic == "" {
		return errors.New("助记词不能为空")
	}
	if opt.DataDir == "" {
		return errors.New("数据目录不能为空")
	}
	if opt.Fee < 0 || opt.Pay <= 0 || opt.Faucet <= 0 {
		return fmt.Errorf("金额无效: faucet %v, pay %v, fee %v", opt.Faucet, opt.Pay, opt.Fee)
	}
	if opt.Pay <= 2*opt.Fee {
		return fmt.Errorf("金额 %v 不足以支付哈希锁的两笔费用 %v", opt.Pay, opt.Fee)
	}
	if opt.Faucet < opt.required() {
		return fmt.Errorf("注入金额 %v 小于一次演示所需的 %v", opt.Faucet, opt.required())
	}

	params, err := networkParams(opt.Network)
	if err != nil {
		return err
	}
	opt.params = params

	if _, err := logrus.ParseLevel(opt.LogLevel); err != nil {
		return err
	}
	if opt.InstanceId == "" {
		opt.BuildInstanceId()
	}
	return nil
}

// required 一次演示花费的总金额：透明输出、哈希锁金额与第一笔交易的费用
func (opt *Options) required() btcutil.Amount {
	return 2*opt.Pay + opt.Fee
}

// networkParams 根据名称查找网络参数
func networkParams(name string) (*chaincfg.Params, error) {
	for _, p := range []*chaincfg.Params{
		&chaincfg.MainNetParams,
		&chaincfg.TestNet3Params,
		&chaincfg.RegressionNetParams,
		&chaincfg.SimNetParams,
	} {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("未知网络 %q", name)
}
