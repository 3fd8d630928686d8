package xsource

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// ConfigMap 读取 ConfigMap 的一个键，先查 Data 再查 BinaryData。
func ConfigMap(client kubernetes.Interface, namespace, name, key string) xloader.Loader[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		if client == nil {
			return nil, ErrNilClient
		}
		cm, err := client.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return nil, notFound(fmt.Sprintf("configmap %s/%s", namespace, name))
		}
		if err != nil {
			return nil, err
		}
		if v, ok := cm.Data[key]; ok {
			return []byte(v), nil
		}
		if v, ok := cm.BinaryData[key]; ok {
			return v, nil
		}
		return nil, notFound(fmt.Sprintf("configmap %s/%s key %q", namespace, name, key))
	}
}
