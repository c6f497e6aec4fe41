package container

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/goopsie/assetdecode/pkg/binio"
	"github.com/goopsie/assetdecode/pkg/model"
)

// classGroup routes PROP chunks to the instances of one class. Position i
// of a property value array belongs to handles[i].
type classGroup struct {
	className string
	handles   []model.Handle
}

type decoder struct {
	log    *zap.Logger
	forest *model.Forest
	groups map[uint32]*classGroup

	metadata map[string]string
}

// Option configures Decode.
type Option func(*decoder)

// WithLogger sets the logger used for per-chunk diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// Decode parses a container buffer into a forest.
//
// A buffer without the container signature yields an empty forest and
// ErrSignatureMismatch. Decoding stops at the END chunk or when fewer bytes
// than a chunk tag remain. A chunk whose body is malformed is skipped; the
// next chunk is always located from the declared body length. Truncated
// chunks and bodies that fail to decompress abort the decode.
func Decode(data []byte, opts ...Option) (*model.Forest, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return model.NewForest(0), err
	}

	d := &decoder{
		log:    zap.NewNop(),
		forest: model.NewForest(int(min(h.InstanceCount, 1<<16))),
		groups: make(map[uint32]*classGroup, min(h.ClassCount, 1<<10)),
	}
	for _, opt := range opts {
		opt(d)
	}

	r := binio.NewReader(data)
	if err := r.Seek(HeaderSize); err != nil {
		return model.NewForest(0), err
	}

	for index := 0; ; index++ {
		if r.Remaining() < len(Tag{}) {
			d.log.Debug("container ended without END chunk", zap.Int("chunks", index))
			break
		}
		raw, err := r.ReadBytes(len(Tag{}))
		if err != nil {
			return nil, fmt.Errorf("chunk %d tag: %w", index, ErrTruncatedChunk)
		}
		tag := Tag(raw)
		if tag == TagEnd {
			break
		}

		ch, err := readChunkHeader(r, tag)
		if err != nil {
			return nil, fmt.Errorf("chunk %d (%s) header: %w", index, tag, ErrTruncatedChunk)
		}
		body, err := readChunkBody(r, ch)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", index, err)
		}

		if err := d.dispatch(tag, body); err != nil {
			d.log.Debug("skipping malformed chunk",
				zap.Int("chunk", index),
				zap.Stringer("tag", tag),
				zap.Error(err),
			)
		}
	}

	d.forest.Metadata = d.metadata
	return d.forest, nil
}

func (d *decoder) dispatch(tag Tag, body []byte) error {
	r := binio.NewReader(body)
	switch tag {
	case TagInstance:
		return d.decodeInstances(r)
	case TagProperty:
		return d.decodeProperty(r)
	case TagParent:
		return d.decodeParents(r)
	case TagMeta:
		return d.decodeMeta(r)
	default:
		d.log.Debug("ignoring chunk", zap.Stringer("tag", tag), zap.Int("length", len(body)))
		return nil
	}
}

func reference(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}

// decodeInstances handles an INST chunk: class id, class name, service
// flag, then a delta-encoded plane array of instance ids.
func (d *decoder) decodeInstances(r *binio.Reader) error {
	classID, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("class id: %w", err)
	}
	className, err := r.ReadLengthPrefixedString()
	if err != nil {
		return fmt.Errorf("class name: %w", err)
	}
	service, err := r.ReadU8()
	if err != nil {
		return fmt.Errorf("service flag: %w", err)
	}
	count, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("instance count: %w", err)
	}
	ids, err := r.ReadPlaneI32Array(int(count))
	if err != nil {
		return fmt.Errorf("instance ids of %s: %w", className, err)
	}
	binio.Cumsum(ids)

	if _, ok := d.groups[classID]; ok {
		return fmt.Errorf("duplicate class id %d (%s)", classID, className)
	}

	group := &classGroup{className: className, handles: make([]model.Handle, len(ids))}
	for i, id := range ids {
		h, err := d.forest.Add(className, reference(id))
		if err != nil {
			d.log.Debug("dropping instance", zap.String("class", className), zap.Error(err))
			group.handles[i] = model.NoHandle
			continue
		}
		d.forest.Node(h).IsService = service != 0
		group.handles[i] = h
	}
	d.groups[classID] = group
	return nil
}

// decodeProperty handles a PROP chunk. Values are decoded completely before
// any is assigned, so a truncated array leaves no partial property behind.
func (d *decoder) decodeProperty(r *binio.Reader) error {
	classID, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("class id: %w", err)
	}
	name, err := r.ReadLengthPrefixedString()
	if err != nil {
		return fmt.Errorf("property name: %w", err)
	}
	typ, err := r.ReadU8()
	if err != nil {
		return fmt.Errorf("property type of %q: %w", name, err)
	}
	ptype := PropertyType(typ)

	group, ok := d.groups[classID]
	if !ok {
		return fmt.Errorf("property %q references unknown class id %d", name, classID)
	}

	decode := ptype.decoder()
	if decode == nil {
		d.log.Debug("dropping unsupported property",
			zap.String("class", group.className),
			zap.String("property", name),
			zap.Stringer("type", ptype),
		)
		return nil
	}

	values, err := decode(r, len(group.handles))
	if err != nil {
		return fmt.Errorf("property %s.%s (%s): %w", group.className, name, ptype, err)
	}
	for i, v := range values {
		if h := group.handles[i]; h != model.NoHandle {
			_ = d.forest.SetProperty(h, name, v)
		}
	}
	return nil
}

// decodeParents handles a PRNT chunk: a version byte, a count, then
// delta-encoded child ids and parent ids.
func (d *decoder) decodeParents(r *binio.Reader) error {
	version, err := r.ReadU8()
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	count, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("link count: %w", err)
	}
	children, err := r.ReadPlaneI32Array(int(count))
	if err != nil {
		return fmt.Errorf("child ids: %w", err)
	}
	parents, err := r.ReadPlaneI32Array(int(count))
	if err != nil {
		return fmt.Errorf("parent ids: %w", err)
	}
	binio.Cumsum(children)
	binio.Cumsum(parents)

	for i := range children {
		child, ok := d.forest.Lookup(reference(children[i]))
		if !ok {
			d.log.Debug("link names unknown child", zap.Int32("child", children[i]))
			continue
		}
		parent, ok := d.forest.Lookup(reference(parents[i]))
		if !ok {
			// Unattached children surface as roots.
			continue
		}
		if err := d.forest.Attach(parent, child); err != nil {
			d.log.Debug("ignoring link",
				zap.Uint8("version", version),
				zap.Int32("child", children[i]),
				zap.Int32("parent", parents[i]),
				zap.Error(err),
			)
		}
	}
	return nil
}

// decodeMeta handles a META chunk of string key/value pairs.
func (d *decoder) decodeMeta(r *binio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("entry count: %w", err)
	}
	pairs := make(map[string]string)
	for i := uint32(0); i < count; i++ {
		key, err := r.ReadLengthPrefixedString()
		if err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		value, err := r.ReadLengthPrefixedString()
		if err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
		pairs[key] = value
	}
	if d.metadata == nil {
		d.metadata = pairs
		return nil
	}
	for k, v := range pairs {
		d.metadata[k] = v
	}
	return nil
}
