package boot

import "github.com/ceyewan/dsorch/xerrors"

var (
	// ErrConfiguration 属性缺失或格式错误，错误信息包含出错的 key 或数据源名称
	ErrConfiguration = xerrors.Wrap(xerrors.ErrInvalidInput, "boot: configuration")

	// ErrConstruction 数据源无法构造，错误信息包含类型名，错误链包含构造失败的原因
	ErrConstruction = xerrors.New("boot: construct datasource")

	// ErrAlreadyConfigured Bind 已经执行过
	ErrAlreadyConfigured = xerrors.New("boot: already configured")
)

// 错误码，由 Bind 附加在自身产生的错误上，可通过 xerrors.GetCode 读取
//
// 工厂返回的错误原样传递，不带错误码。
const (
	CodeConfiguration     = "BOOT_CONFIGURATION"
	CodeConstruction      = "BOOT_CONSTRUCTION"
	CodeAlreadyConfigured = "BOOT_ALREADY_CONFIGURED"
)

// withCode 按错误类别附加错误码，其他错误原样返回
func withCode(err error) error {
	switch {
	case xerrors.Is(err, ErrConstruction):
		return xerrors.WithCode(err, CodeConstruction)
	case xerrors.Is(err, ErrConfiguration):
		return xerrors.WithCode(err, CodeConfiguration)
	case xerrors.Is(err, ErrAlreadyConfigured):
		return xerrors.WithCode(err, CodeAlreadyConfigured)
	default:
		return err
	}
}
