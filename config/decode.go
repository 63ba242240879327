package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// NormalizeKey 宽松键名：小写，"-" 替换为 "_"
func NormalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "-", "_")
}

// Decode 将属性树解码到 target
//
// 各层键名先经过 NormalizeKey，因此 dial-timeout、DIAL_TIMEOUT 与 dial_timeout
// 绑定到同一个 mapstructure 标签。支持弱类型输入、时长字符串与逗号分隔的切片。
func Decode(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(normalize(input))
}

func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch nested := v.(type) {
		case map[string]any:
			v = normalize(nested)
		case map[any]any:
			v = normalize(cast.ToStringMap(nested))
		}
		out[NormalizeKey(k)] = v
	}
	return out
}
