package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log 是全局的logrus实例；未调用InitLogger时也能用（测试里就是这样）
var Log = logrus.New()

// InitLogger 初始化全局Logger：1、JSON格式 2、控制台+日志文件双写（file为空则只写控制台） 3、设置日志级别
func InitLogger(file, level string) error {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	var out io.Writer = os.Stdout
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	Log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	return nil
}
