package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.uber.org/fx"

	"github.com/qinglongcn/tze/store"
	"github.com/qinglongcn/tze/wallet"
)

// Run 检查选项，初始化目录与日志，然后启动 fx 应用执行 invoke
// invoke 应当以 OnStart 钩子的方式注册自己的工作，失败时已打开的资源会被回滚关闭。
func Run(opt *Options, fs afero.Fs, invoke interface{}) error {
	// 1. 检查并设置选项
	if err := opt.CheckAndSetOptions(); err != nil {
		return err
	}
	// 2. 本地文件夹
	if err := initDirectories(fs, opt); err != nil {
		return err
	}
	// 3. 日志
	if err := SetLog(opt); err != nil {
		return err
	}

	app := fx.New(
		fx.NopLogger,
		fx.Supply(opt),
		fx.Provide(
			NewUTXOSet, // 未花费输出集合
			NewWallet,  // 钱包
		),
		fx.Invoke(invoke),
	)
	if err := app.Err(); err != nil {
		logrus.Errorf("[Run] 初始化失败:\t%v", err)
		return err
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		logrus.Errorf("[Run] 运行失败:\t%v", err)
		return err
	}
	return app.Stop(ctx)
}

type NewUTXOSetInput struct {
	fx.In

	Opt *Options // 选项配置
}

type NewUTXOSetOutput struct {
	fx.Out

	UTXOs *store.UTXOSet // 未花费输出集合
}

// NewUTXOSet 打开数据目录下的未花费输出集合，应用停止时关闭
func NewUTXOSet(lc fx.Lifecycle, input NewUTXOSetInput) (out NewUTXOSetOutput, err error) {
	utxos, err := store.Open(input.Opt.DBPath())
	if err != nil {
		logrus.Errorf("[NewUTXOSet] 打开数据库失败:\t%v", err)
		return out, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return utxos.Close()
		},
	})

	out.UTXOs = utxos
	return out, nil
}

type NewWalletInput struct {
	fx.In

	Opt *Options // 选项配置
}

type NewWalletOutput struct {
	fx.Out

	Wallet *wallet.Wallet // 钱包
}

// NewWallet 由助记词与密码创建钱包
func NewWallet(input NewWalletInput) (out NewWalletOutput, err error) {
	w, err := wallet.NewWallet([]byte(input.Opt.Mnemonic), []byte(input.Opt.Password))
	if err != nil {
		logrus.Errorf("[NewWallet] 创建钱包失败:\t%v", err)
		return out, err
	}
	out.Wallet = w
	return out, nil
}
