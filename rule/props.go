package rule

import (
	"maps"
	"runtime"

	"github.com/spf13/cast"

	"github.com/ceyewan/dsorch/xerrors"
)

// 可识别的覆盖属性
const (
	PropSQLShow      = "sql.show"
	PropExecutorSize = "executor.size"
)

// ErrInvalidProps 覆盖属性格式非法
var ErrInvalidProps = xerrors.New("rule: invalid props")

// Props 覆盖属性，只包含配置中显式给出的键
//
// 解析与默认值由使用方在装配时决定。
type Props map[string]string

// Clone 返回副本
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	return maps.Clone(p)
}

// SQLShow 解析 sql.show，缺省为 false
func (p Props) SQLShow() (bool, error) {
	raw, ok := p[PropSQLShow]
	if !ok {
		return false, nil
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return false, xerrors.Tag(ErrInvalidProps, err, "%s=%q", PropSQLShow, raw)
	}
	return v, nil
}

// ExecutorSize 解析 executor.size，缺省为 runtime.NumCPU()，必须为正数
func (p Props) ExecutorSize() (int, error) {
	raw, ok := p[PropExecutorSize]
	if !ok {
		return runtime.NumCPU(), nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, xerrors.Tag(ErrInvalidProps, err, "%s=%q", PropExecutorSize, raw)
	}
	if v <= 0 {
		return 0, xerrors.Wrapf(ErrInvalidProps, "%s=%q must be positive", PropExecutorSize, raw)
	}
	return v, nil
}
