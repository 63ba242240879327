package orchestration

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/connector"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/rule"
	"github.com/ceyewan/dsorch/xerrors"
)

const (
	nodeDataSource = "config/datasource"
	nodeRule       = "config/rule"
	nodeConfigMap  = "config/configmap"
	nodeProps      = "config/props"
	nodeInstances  = "state/instances"
)

// ruleNode 是 config/rule 节点的内容
type ruleNode struct {
	Kind        rule.Kind             `json:"kind"`
	Sharding    *rule.ShardingRule    `json:"sharding,omitempty"`
	MasterSlave *rule.MasterSlaveRule `json:"masterSlave,omitempty"`
}

// instanceNode 是 state/instances/<id> 节点的内容
type instanceNode struct {
	ID        string    `json:"id"`
	Hostname  string    `json:"hostname"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"startedAt"`
}

type etcdCenter struct {
	cfg    *Config
	conn   connector.EtcdConnector
	client *clientv3.Client
	logger clog.Logger
	root   string

	mu      sync.Mutex
	leaseID clientv3.LeaseID
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// Open 连接 etcd 并返回 Center
func Open(ctx context.Context, cfg *Config, opts ...Option) (Center, error) {
	if cfg == nil {
		return nil, xerrors.Wrap(ErrInvalidConfig, "config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts...)

	conn, err := connector.NewEtcd(&cfg.Etcd, connector.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}

	return &etcdCenter{
		cfg:    cfg,
		conn:   conn,
		client: conn.GetClient(),
		logger: o.logger.With(clog.String("orchestration", cfg.Name)),
		root:   path.Join(cfg.Namespace, cfg.Name),
	}, nil
}

func (c *etcdCenter) key(node string) string {
	return c.root + "/" + node
}

// Persist 写入快照
//
// overwrite 为 false 时每个 key 通过 CreateRevision == 0 条件写入。
func (c *etcdCenter) Persist(ctx context.Context, snap Snapshot, overwrite bool) error {
	if c.closed.Load() {
		return ErrClosed
	}

	nodes, err := encodeSnapshot(snap.Masked())
	if err != nil {
		return err
	}

	for _, node := range []string{nodeDataSource, nodeRule, nodeConfigMap, nodeProps} {
		key := c.key(node)
		put := clientv3.OpPut(key, nodes[node])

		if overwrite {
			if _, err := c.client.Do(ctx, put); err != nil {
				return xerrors.Wrapf(err, "put %s", key)
			}
			continue
		}

		resp, err := c.client.Txn(ctx).
			If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
			Then(put).
			Commit()
		if err != nil {
			return xerrors.Wrapf(err, "txn put %s", key)
		}
		if !resp.Succeeded {
			c.logger.Debug("orchestration key exists, keeping stored value", clog.String("key", key))
		}
	}

	c.logger.Info("snapshot persisted",
		clog.String("kind", string(snap.Kind)),
		clog.Bool("overwrite", overwrite))
	return nil
}

// Load 读取快照
func (c *etcdCenter) Load(ctx context.Context) (*Snapshot, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	prefix := c.key("config/")
	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, xerrors.Wrapf(err, "get %s", prefix)
	}
	if len(resp.Kvs) == 0 {
		return nil, ErrNotFound
	}

	nodes := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		nodes[strings.TrimPrefix(string(kv.Key), c.root+"/")] = string(kv.Value)
	}
	return decodeSnapshot(nodes)
}

// RegisterInstance 用租约登记实例并后台续约
func (c *etcdCenter) RegisterInstance(ctx context.Context) (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return "", xerrors.Wrap(xerrors.ErrAlreadyExists, "orchestration: instance already registered")
	}

	lease, err := c.client.Grant(ctx, int64(c.cfg.TTL.Seconds()))
	if err != nil {
		return "", xerrors.Wrap(err, "grant lease failed")
	}

	hostname, _ := os.Hostname()
	inst := instanceNode{ID: uuid.NewString(), Hostname: hostname, PID: os.Getpid(), StartedAt: time.Now()}
	value, err := json.Marshal(inst)
	if err != nil {
		c.revoke(ctx, lease.ID)
		return "", xerrors.Wrap(err, "marshal instance failed")
	}

	key := c.key(nodeInstances + "/" + inst.ID)
	if _, err := c.client.Put(ctx, key, string(value), clientv3.WithLease(lease.ID)); err != nil {
		c.revoke(ctx, lease.ID)
		return "", xerrors.Wrap(err, "put instance failed")
	}

	keepAliveCtx, cancel := context.WithCancel(context.Background())
	ch, err := c.client.KeepAlive(keepAliveCtx, lease.ID)
	if err != nil {
		cancel()
		c.revoke(ctx, lease.ID)
		return "", xerrors.Wrap(err, "keepalive failed")
	}

	c.leaseID = lease.ID
	c.cancel = cancel
	c.wg.Add(1)
	go c.monitorKeepAlive(inst.ID, ch)

	c.logger.Info("instance registered", clog.String("instance_id", inst.ID), clog.String("key", key))
	return inst.ID, nil
}

// monitorKeepAlive 消费续约响应，channel 关闭表示租约失效或连接断开
func (c *etcdCenter) monitorKeepAlive(id string, ch <-chan *clientv3.LeaseKeepAliveResponse) {
	defer c.wg.Done()
	for resp := range ch {
		c.logger.Debug("keepalive renewed", clog.String("instance_id", id), clog.Int64("ttl", resp.TTL))
	}
	if !c.closed.Load() {
		c.logger.Error("keepalive channel closed, lease expired or connection lost",
			clog.String("instance_id", id))
	}
}

func (c *etcdCenter) revoke(ctx context.Context, id clientv3.LeaseID) {
	if _, err := c.client.Revoke(ctx, id); err != nil {
		c.logger.Warn("failed to revoke lease", clog.Int64("lease_id", int64(id)), clog.Error(err))
	}
}

// Close 撤销租约并关闭 etcd 连接，幂等
func (c *etcdCenter) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	cancel, leaseID := c.cancel, c.leaseID
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		c.revoke(ctx, leaseID)
		done()
	}
	c.wg.Wait()

	c.logger.Info("orchestration center closed")
	return c.conn.Close()
}

func encodeSnapshot(s Snapshot) (map[string]string, error) {
	values := map[string]any{
		nodeDataSource: s.DataSources,
		nodeRule:       ruleNode{Kind: s.Kind, Sharding: s.Sharding, MasterSlave: s.MasterSlave},
		nodeConfigMap:  s.ConfigMap,
		nodeProps:      s.Props,
	}
	out := make(map[string]string, len(values))
	for node, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, xerrors.Wrapf(err, "encode %s", node)
		}
		out[node] = string(b)
	}
	return out, nil
}

func decodeSnapshot(nodes map[string]string) (*Snapshot, error) {
	snap := &Snapshot{}
	if raw, ok := nodes[nodeDataSource]; ok {
		var descs []datasource.Descriptor
		if err := json.Unmarshal([]byte(raw), &descs); err != nil {
			return nil, xerrors.Wrapf(err, "decode %s", nodeDataSource)
		}
		snap.DataSources = descs
	}
	if raw, ok := nodes[nodeRule]; ok {
		var r ruleNode
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, xerrors.Wrapf(err, "decode %s", nodeRule)
		}
		snap.Kind, snap.Sharding, snap.MasterSlave = r.Kind, r.Sharding, r.MasterSlave
	}
	if raw, ok := nodes[nodeConfigMap]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.ConfigMap); err != nil {
			return nil, xerrors.Wrapf(err, "decode %s", nodeConfigMap)
		}
	}
	if raw, ok := nodes[nodeProps]; ok {
		if err := json.Unmarshal([]byte(raw), &snap.Props); err != nil {
			return nil, xerrors.Wrapf(err, "decode %s", nodeProps)
		}
	}
	return snap, nil
}
